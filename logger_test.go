package ui

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/ui/element"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Fatal("Logger() did not return the custom logger set via SetLogger")
	}
	Logger().Info("test message", "key", "value")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("expected log output to contain 'test message', got: %s", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestSetLoggerPropagatesToContexts(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	follow, err := NewContext(element.NewDiv(element.Style{}), WithWorkers(1))
	if err != nil {
		t.Fatalf("NewContext() = %v", err)
	}
	defer follow.Close()

	own := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	pinned, err := NewContext(element.NewDiv(element.Style{}), WithWorkers(1), WithLogger(own))
	if err != nil {
		t.Fatalf("NewContext() = %v", err)
	}
	defer pinned.Close()

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)

	if follow.log() != custom {
		t.Error("SetLogger did not reach a context without its own logger")
	}
	if pinned.log() != own {
		t.Error("SetLogger replaced a logger given with WithLogger")
	}

	if err := follow.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	SetLogger(nil)
	if follow.log() != custom {
		t.Error("closed contexts should no longer receive the package logger")
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	const goroutines = 100

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := Logger()
			if l == nil {
				t.Error("Logger() returned nil during concurrent access")
			}
			l.Debug("concurrent read")
		}()
	}
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("message", "key", "value")
	}
}
