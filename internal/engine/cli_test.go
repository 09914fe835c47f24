package engine

import (
	"context"
	"os"
	"testing"

	"github.com/example/whisperctl/internal/testutil"
)

const sampleCLIJSON = `{
  "result": {"language": "en"},
  "transcription": [
    {
      "timestamps": {"from": "00:00:00,000", "to": "00:00:02,500"},
      "offsets": {"from": 0, "to": 2500},
      "text": " Hello world."
    },
    {
      "timestamps": {"from": "00:00:02,500", "to": "00:00:04,000"},
      "offsets": {"from": 2500, "to": 4000},
      "text": " Goodbye."
    }
  ]
}`

func TestParseCLIOutput(t *testing.T) {
	res, err := parseCLIOutput([]byte(sampleCLIJSON))
	if err != nil {
		t.Fatalf("parseCLIOutput: %v", err)
	}

	if res.Text != "Hello world. Goodbye." {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Language != "en" {
		t.Errorf("Language = %q; want en", res.Language)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segments = %d; want 2", len(res.Segments))
	}

	first := res.Segments[0]
	if first.ID != 0 || first.Start != 0 || first.End != 2.5 {
		t.Errorf("first segment = %+v", first)
	}
	if first.Text != "Hello world." {
		t.Errorf("first segment text = %q", first.Text)
	}

	second := res.Segments[1]
	if second.Start != 2.5 || second.End != 4.0 {
		t.Errorf("second segment = %+v", second)
	}
}

func TestParseCLIOutputEmptyTranscription(t *testing.T) {
	res, err := parseCLIOutput([]byte(`{"result":{"language":"en"},"transcription":[]}`))
	if err != nil {
		t.Fatalf("parseCLIOutput: %v", err)
	}
	if res.Text != "" {
		t.Errorf("Text = %q; want empty", res.Text)
	}
	if len(res.Segments) != 0 {
		t.Errorf("segments = %d; want 0", len(res.Segments))
	}
}

func TestParseCLIOutputInvalidJSON(t *testing.T) {
	if _, err := parseCLIOutput([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

// TestCLITranscribeIntegration runs the real whisper-cli binary against a
// synthetic tone. It only runs when both the binary and a model file (named
// by WHISPERCTL_TEST_MODEL) are present.
func TestCLITranscribeIntegration(t *testing.T) {
	testutil.RequireWhisperCLI(t)

	modelPath := os.Getenv("WHISPERCTL_TEST_MODEL")
	if modelPath == "" {
		t.Skip("WHISPERCTL_TEST_MODEL not set")
	}
	testutil.RequireFile(t, modelPath)

	const rate = 16000
	tone := testutil.Sine(rate, rate, 440) // 1s
	samples := make([]float32, len(tone))
	for i, s := range tone {
		samples[i] = float32(s) / 32768
	}

	e := NewCLI(os.Getenv("WHISPERCTL_ENGINE_CLI_PATH"), modelPath)
	res, err := e.Transcribe(context.Background(), samples, Options{Language: "en"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Language == "" {
		t.Error("expected detected language")
	}
}

func TestNewCLIDefaultsExecutable(t *testing.T) {
	e := NewCLI("", "/models/ggml-tiny.en.bin")
	if e.ExecutablePath != "whisper-cli" {
		t.Errorf("ExecutablePath = %q; want whisper-cli", e.ExecutablePath)
	}
	if e.ModelPath != "/models/ggml-tiny.en.bin" {
		t.Errorf("ModelPath = %q", e.ModelPath)
	}
}
