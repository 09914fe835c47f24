package doctor_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/whisperctl/internal/doctor"
)

var errBinaryNotFound = errors.New("executable file not found in $PATH")

func hasFailureContaining(failures []string, substr string) bool {
	for _, f := range failures {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func writeModelFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ggml-tiny.en.bin")
	if err := os.WriteFile(path, []byte("weights"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// all-pass scenario
// ---------------------------------------------------------------------------

func TestRun_AllChecksPass(t *testing.T) {
	cfg := doctor.Config{
		ModelPath:       writeModelFile(t),
		DataDir:         t.TempDir(),
		NativeAvailable: false,
		CLIVersion:      func() (string, error) { return "whisper.cpp v1.7.4", nil },
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "whisper-cli") {
		t.Error("output should mention whisper-cli")
	}
}

// ---------------------------------------------------------------------------
// model file missing
// ---------------------------------------------------------------------------

func TestRun_ModelMissingFails(t *testing.T) {
	cfg := doctor.Config{
		ModelPath:       filepath.Join(t.TempDir(), "ggml-tiny.en.bin"),
		DataDir:         t.TempDir(),
		NativeAvailable: true,
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() {
		t.Fatal("expected failure when the model file is absent")
	}

	if !hasFailureContaining(result.Failures(), "model file") {
		t.Errorf("expected failure mentioning the model file, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "whisperctl download") {
		t.Error("output should hint at the download command")
	}
}

// ---------------------------------------------------------------------------
// whisper-cli missing without native backend
// ---------------------------------------------------------------------------

func TestRun_CLIMissingFailsWithoutNative(t *testing.T) {
	cfg := doctor.Config{
		ModelPath:       writeModelFile(t),
		DataDir:         t.TempDir(),
		NativeAvailable: false,
		CLIVersion:      func() (string, error) { return "", errBinaryNotFound },
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() {
		t.Fatal("expected failure when whisper-cli is not found")
	}

	if !hasFailureContaining(result.Failures(), "whisper-cli") {
		t.Errorf("expected failure mentioning whisper-cli, got: %v", result.Failures())
	}
}

func TestRun_NativeBackendSkipsCLICheck(t *testing.T) {
	cfg := doctor.Config{
		ModelPath:       writeModelFile(t),
		DataDir:         t.TempDir(),
		NativeAvailable: true,
		CLIVersion: func() (string, error) {
			t.Error("CLI probe must not run when the native backend is available")
			return "", nil
		},
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("unexpected failures: %v", result.Failures())
	}
}

// ---------------------------------------------------------------------------
// data directory
// ---------------------------------------------------------------------------

func TestRun_EmptyDataDirFails(t *testing.T) {
	cfg := doctor.Config{
		ModelPath:       writeModelFile(t),
		DataDir:         "",
		NativeAvailable: true,
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !hasFailureContaining(result.Failures(), "data dir") {
		t.Errorf("expected data dir failure, got: %v", result.Failures())
	}
}

func TestRun_CreatesMissingDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := doctor.Config{
		ModelPath:       writeModelFile(t),
		DataDir:         dir,
		NativeAvailable: true,
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("unexpected failures: %v", result.Failures())
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir should have been created: %v", err)
	}
}

// ---------------------------------------------------------------------------
// result helpers
// ---------------------------------------------------------------------------

func TestResult_AddFailure(t *testing.T) {
	var r doctor.Result
	r.AddFailure("external check failed")

	if !r.Failed() {
		t.Error("expected Failed() after AddFailure")
	}

	if got := r.Failures(); len(got) != 1 || got[0] != "external check failed" {
		t.Errorf("Failures() = %v", got)
	}
}
