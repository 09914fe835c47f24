package engine

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/whisperctl/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func TestNewStubBackend(t *testing.T) {
	cfg := config.EngineConfig{Backend: config.BackendStub}

	eng, err := New(context.Background(), cfg, "/nonexistent/model.bin", discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })

	if _, ok := eng.(*StubEngine); !ok {
		t.Fatalf("expected *StubEngine, got %T", eng)
	}
}

func TestNewInvalidBackend(t *testing.T) {
	cfg := config.EngineConfig{Backend: "vulkan"}

	if _, err := New(context.Background(), cfg, "", discardLogger()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewNativeBackendWithoutBuildTag(t *testing.T) {
	if NativeAvailable() {
		t.Skip("native backend compiled in")
	}

	cfg := config.EngineConfig{Backend: config.BackendNative}

	_, err := New(context.Background(), cfg, "/models/ggml-tiny.en.bin", discardLogger())
	if err == nil {
		t.Fatal("expected error when native backend is not compiled in")
	}
}

func TestStubEngineDeterministic(t *testing.T) {
	eng := NewStub(discardLogger())
	samples := make([]float32, 16000)

	res, err := eng.Transcribe(context.Background(), samples, Options{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if res.Language != "en" {
		t.Errorf("Language = %q; want en", res.Language)
	}
	if len(res.Segments) != 1 {
		t.Fatalf("segments = %d; want 1", len(res.Segments))
	}
	if res.Segments[0].End != 1.0 {
		t.Errorf("segment end = %v; want 1.0 (one second of audio)", res.Segments[0].End)
	}
}

func TestStubEngineFixedResult(t *testing.T) {
	eng := NewStub(discardLogger())
	eng.FixedResult = &Result{Text: "hello", Language: "en"}

	res, err := eng.Transcribe(context.Background(), []float32{0}, Options{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "hello" {
		t.Errorf("Text = %q; want hello", res.Text)
	}
}

func TestStubEngineHonorsContext(t *testing.T) {
	eng := NewStub(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.Transcribe(ctx, []float32{0}, Options{}); err == nil {
		t.Fatal("expected context error")
	}
}
