package geom

import "testing"

func TestVec2Lerp(t *testing.T) {
	a := V2(0, 0)
	b := V2(10, 20)
	tests := []struct {
		t    float32
		want Vec2
	}{
		{0, V2(0, 0)},
		{0.5, V2(5, 10)},
		{1, V2(10, 20)},
	}
	for _, tt := range tests {
		if got := a.Lerp(b, tt.t); got != tt.want {
			t.Errorf("Lerp(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := XYWH(10, 10, 20, 20)
	tests := []struct {
		p    Vec2
		want bool
	}{
		{V2(10, 10), true},
		{V2(29.9, 29.9), true},
		{V2(30, 20), false},
		{V2(9, 20), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	r := XYWH(0, 0, 10, 10)
	if got := r.Union(Rect{}); got != r {
		t.Errorf("Union(empty) = %v, want %v", got, r)
	}
	if got := (Rect{}).Union(r); got != r {
		t.Errorf("empty.Union = %v, want %v", got, r)
	}
	got := r.Union(XYWH(5, 5, 10, 10))
	want := XYWH(0, 0, 15, 15)
	if got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
}

func TestRectInsetClamps(t *testing.T) {
	r := XYWH(0, 0, 10, 10).Inset(2, 20, 2, 2)
	if r.Width() != 0 {
		t.Errorf("Width() = %v, want 0", r.Width())
	}
	if r.Height() != 6 {
		t.Errorf("Height() = %v, want 6", r.Height())
	}
}
