package fragment

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ui/geom"
)

func TestUniformSizes(t *testing.T) {
	assert.Len(t, DivUniforms{}.Bytes(), DivUniformsSize)
	assert.Len(t, TextUniforms{}.Bytes(), TextUniformsSize)
	assert.Len(t, ImageUniforms{}.Bytes(), ImageUniformsSize)
}

func TestUniformKinds(t *testing.T) {
	for _, tt := range []struct {
		u    Uniforms
		want Kind
	}{
		{DivUniforms{}, KindDiv},
		{TextUniforms{}, KindText},
		{ImageUniforms{}, KindImage},
	} {
		assert.Equal(t, tt.want, tt.u.Kind())
	}
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, 3, NumKinds)
}

func TestDivUniformsLayout(t *testing.T) {
	u := DivUniforms{
		Color:        RGBA(1, 0, 0, 1),
		RectCenter:   geom.V2(30, 40),
		HalfExtent:   geom.V2(5, 6),
		CornerRadius: 3,
	}
	b := u.Bytes()
	f := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(30), f(8))
	assert.Equal(t, float32(6), f(11))
	assert.Equal(t, float32(3), f(12))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", White},
		{"#000000", Black},
		{"#ff000080", Color{R: 1, A: float32(0x80) / 255}},
		{"transparent", Transparent},
		{"white", White},
		{" Black ", Black},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"#12", "#zzzzzz", "notacolor"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestColorRoundTripNRGBA(t *testing.T) {
	c, err := ParseColor("#336699")
	require.NoError(t, err)
	n := c.NRGBA()
	assert.Equal(t, uint8(0x33), n.R)
	assert.Equal(t, uint8(0x66), n.G)
	assert.Equal(t, uint8(0x99), n.B)
	assert.Equal(t, uint8(0xff), n.A)
}

func TestCheckCorrespondence(t *testing.T) {
	a := Atomized{ID: 1, Atoms: make([]Atom, 3)}
	assert.NoError(t, CheckCorrespondence(a, Placed{ID: 1, Placements: make([]AtomPlacement, 3)}))
	assert.Error(t, CheckCorrespondence(a, Placed{ID: 1, Placements: make([]AtomPlacement, 2)}))
	assert.Error(t, CheckCorrespondence(a, Placed{ID: 2, Placements: make([]AtomPlacement, 3)}))
}

func TestEncoderFunc(t *testing.T) {
	var got []NodeID
	enc := EncoderFunc(func(dc DrawCall) error {
		got = append(got, dc.Node)
		return nil
	})
	require.NoError(t, enc.Draw(DrawCall{Node: 4}))
	assert.Equal(t, []NodeID{4}, got)
}
