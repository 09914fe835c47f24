package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/whisperctl/internal/audio"
)

// CLIEngine shells out to the whisper.cpp command-line binary and parses its
// JSON output. It is the fallback when the native bindings are not built.
type CLIEngine struct {
	ExecutablePath string
	ModelPath      string
}

// NewCLI returns an engine backed by the whisper-cli executable.
func NewCLI(executablePath, modelPath string) *CLIEngine {
	if executablePath == "" {
		executablePath = "whisper-cli"
	}
	return &CLIEngine{ExecutablePath: executablePath, ModelPath: modelPath}
}

func (e *CLIEngine) Close() error { return nil }

func (e *CLIEngine) Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "whisperctl-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	wavPath := filepath.Join(tmpDir, "input.wav")
	if err := os.WriteFile(wavPath, audio.EncodeWAV(samples), 0o644); err != nil {
		return Result{}, fmt.Errorf("write temp wav: %w", err)
	}

	outBase := filepath.Join(tmpDir, "out")
	args := []string{
		"-m", e.ModelPath,
		"-f", wavPath,
		"-oj",
		"-of", outBase,
		"-np",
	}
	if opts.Language != "" && opts.Language != "auto" {
		args = append(args, "-l", opts.Language)
	}
	if opts.Translate {
		args = append(args, "-tr")
	}
	if opts.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(opts.Threads))
	}

	cmd := exec.CommandContext(ctx, e.ExecutablePath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return Result{}, fmt.Errorf("%s failed: %w: %s", e.ExecutablePath, err, msg)
		}
		return Result{}, fmt.Errorf("%s failed: %w", e.ExecutablePath, err)
	}

	raw, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return Result{}, fmt.Errorf("read whisper-cli output: %w", err)
	}

	return parseCLIOutput(raw)
}

// cliOutput mirrors the whisper.cpp JSON output schema (-oj).
type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseCLIOutput(raw []byte) (Result, error) {
	var out cliOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("parse whisper-cli output: %w", err)
	}

	var (
		segments []Segment
		text     strings.Builder
	)
	for i, seg := range out.Transcription {
		trimmed := strings.TrimSpace(seg.Text)
		segments = append(segments, Segment{
			ID:    i,
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  trimmed,
		})
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(trimmed)
	}

	return Result{
		Text:     text.String(),
		Language: out.Result.Language,
		Segments: segments,
	}, nil
}
