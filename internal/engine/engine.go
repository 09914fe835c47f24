// Package engine provides transcription backends over a common interface:
// native whisper.cpp bindings, the whisper-cli subprocess, and a stub.
package engine

import (
	"context"
	"errors"
)

// ErrNativeUnavailable indicates the native whisper backend was not compiled
// in (build without the `whisper` tag).
var ErrNativeUnavailable = errors.New("engine: native whisper backend not compiled in")

// Engine transcribes mono 16 kHz float32 PCM.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error)
	Close() error
}

// Options configures a single transcription call.
type Options struct {
	// Language is a spoken-language hint ("auto" or "" lets the model detect).
	Language string
	// Translate requests translation of non-English speech into English.
	Translate bool
	// Threads caps decoder threads; <=0 uses all CPUs.
	Threads int
}

// Segment is one timed slice of the transcript.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the transcript produced by an engine.
type Result struct {
	Text     string
	Language string
	Segments []Segment
}
