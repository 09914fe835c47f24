// Package transcribe wires model fetching, backend selection, and audio
// decoding into a single pipeline producing a JSON result document.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/whisperctl/internal/audio"
	"github.com/example/whisperctl/internal/config"
	"github.com/example/whisperctl/internal/engine"
	"github.com/example/whisperctl/internal/model"
)

// Document is the single JSON payload printed for a transcription run. A
// failed run carries only an "error" field; a successful run carries text,
// language, and segments.
type Document struct {
	Text     string
	Language string
	Segments []engine.Segment
	Err      string
}

func (d Document) MarshalJSON() ([]byte, error) {
	if d.Err != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{d.Err})
	}

	segments := d.Segments
	if segments == nil {
		segments = []engine.Segment{}
	}

	return json.Marshal(struct {
		Text     string           `json:"text"`
		Language string           `json:"language"`
		Segments []engine.Segment `json:"segments"`
	}{d.Text, d.Language, segments})
}

// JSON renders the document; encoding a Document cannot fail, so any marshal
// error is itself folded into an error document.
func (d Document) JSON() string {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "encode result: "+err.Error())
	}
	return string(b)
}

func errorDocument(format string, args ...any) Document {
	return Document{Err: fmt.Sprintf(format, args...)}
}

// ModelEnsurer makes a model artifact available locally.
type ModelEnsurer interface {
	Ensure(ctx context.Context) error
	LocalPath() string
}

// Session holds the pipeline dependencies. Every field is injectable so tests
// can run the full flow without a network, a model file, or whisper itself.
type Session struct {
	Fetcher   ModelEnsurer
	NewEngine func(ctx context.Context, modelPath string) (engine.Engine, error)
	Decode    func(path string) ([]float32, error)
	Options   engine.Options
	Logger    *slog.Logger
}

// NewSession builds a Session from configuration with the real fetcher,
// engine factory, and audio decoder.
func NewSession(cfg config.Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	fetcher := &model.Fetcher{
		Artifact:  model.Artifact{Size: cfg.Model.Size, Lang: cfg.Model.Lang},
		ModelsDir: cfg.ModelsDir(),
		Progress:  model.NewWriterProgress(os.Stderr),
		Stdout:    os.Stderr,
	}

	return &Session{
		Fetcher: fetcher,
		NewEngine: func(ctx context.Context, modelPath string) (engine.Engine, error) {
			return engine.New(ctx, cfg.Engine, modelPath, logger)
		},
		Decode: audio.DecodeFile,
		Options: engine.Options{
			Language:  cfg.Engine.Language,
			Translate: cfg.Engine.Translate,
			Threads:   cfg.Engine.Threads,
		},
		Logger: logger,
	}
}

// Run executes the pipeline for one audio file. Every failure is folded into
// the returned document; nothing escapes as an error.
func (s *Session) Run(ctx context.Context, audioPath string) Document {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	if _, err := os.Stat(audioPath); err != nil {
		return errorDocument("audio file not found: %s", audioPath)
	}

	if err := s.Fetcher.Ensure(ctx); err != nil {
		log.Error("model download failed", "error", err)
		return errorDocument("failed to download whisper model: %v", err)
	}

	eng, err := s.NewEngine(ctx, s.Fetcher.LocalPath())
	if err != nil {
		log.Error("backend unavailable", "error", err)
		return errorDocument("transcription backend unavailable: %v", err)
	}
	defer func() { _ = eng.Close() }()

	samples, err := s.Decode(audioPath)
	if err != nil {
		return errorDocument("transcription error: %v", err)
	}

	log.Info("transcribing audio", "path", audioPath, "samples", len(samples))

	result, err := eng.Transcribe(ctx, samples, s.Options)
	if err != nil {
		return errorDocument("transcription error: %v", err)
	}

	language := result.Language
	if language == "" {
		language = "en"
	}

	return Document{
		Text:     result.Text,
		Language: language,
		Segments: result.Segments,
	}
}
