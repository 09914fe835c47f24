package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// StubEngine produces deterministic transcripts without any model. Used by
// tests and when the backend is explicitly configured to "stub".
type StubEngine struct {
	log *slog.Logger

	// FixedResult, when non-nil, is returned verbatim for every call.
	FixedResult *Result
}

// NewStub returns an Engine that generates placeholder transcripts.
func NewStub(logger *slog.Logger) *StubEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubEngine{log: logger.With("component", "engine.stub")}
}

func (e *StubEngine) Close() error { return nil }

func (e *StubEngine) Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if e.FixedResult != nil {
		return *e.FixedResult, nil
	}

	dur := float64(len(samples)) / 16000
	text := fmt.Sprintf("[stub] received %d samples (%.2fs)", len(samples), dur)
	e.log.Debug("stub transcript", "samples", len(samples), "language", opts.Language)

	return Result{
		Text:     text,
		Language: "en",
		Segments: []Segment{{ID: 0, Start: 0, End: dur, Text: text}},
	}, nil
}
