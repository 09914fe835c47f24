//go:build whisper

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// NativeAvailable reports whether the whisper.cpp bindings are compiled in.
func NativeAvailable() bool { return true }

// NativeEngine runs whisper.cpp in-process through the Go bindings.
type NativeEngine struct {
	model whisper.Model
}

// NewNative loads the ggml model at modelPath.
func NewNative(modelPath string) (Engine, error) {
	if modelPath == "" {
		return nil, errors.New("engine: model path required")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &NativeEngine{model: m}, nil
}

func (e *NativeEngine) Close() error {
	if e.model == nil {
		return nil
	}
	return e.model.Close()
}

func (e *NativeEngine) Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error) {
	if e.model == nil {
		return Result{}, errors.New("engine: nil model")
	}
	if len(samples) == 0 {
		return Result{}, errors.New("engine: no audio samples")
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("new context: %w", err)
	}

	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	wctx.SetTranslate(opts.Translate)

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("process: %w", err)
	}

	var (
		segments []Segment
		text     strings.Builder
	)
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("next segment: %w", err)
		}

		segments = append(segments, Segment{
			ID:    i,
			Start: s.Start.Seconds(),
			End:   s.End.Seconds(),
			Text:  s.Text,
		})
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(s.Text)
	}

	detected := wctx.DetectedLanguage()
	if detected == "" {
		detected = wctx.Language()
	}

	return Result{
		Text:     text.String(),
		Language: detected,
		Segments: segments,
	}, nil
}
