// Package testutil provides shared audio fixtures and skip helpers for tests.
//
// Each skip helper calls t.Skip with a clear human-readable reason when the
// named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
package testutil

import (
	"os"
	"os/exec"
	"testing"
)

// RequireWhisperCLI skips the test if the whisper-cli binary is not found in
// PATH or the path given by the WHISPERCTL_ENGINE_CLI_PATH environment variable.
func RequireWhisperCLI(tb testing.TB) {
	tb.Helper()

	exe := os.Getenv("WHISPERCTL_ENGINE_CLI_PATH")
	if exe == "" {
		exe = "whisper-cli"
	}

	if _, err := exec.LookPath(exe); err != nil {
		tb.Skipf("whisper-cli binary not available (%q not in PATH); set WHISPERCTL_ENGINE_CLI_PATH to override", exe)
	}
}

// RequireFile skips the test when path does not exist. Used for optional
// model artifacts that only some environments carry.
func RequireFile(tb testing.TB, path string) {
	tb.Helper()

	if _, err := os.Stat(path); err != nil {
		tb.Skipf("required file %s not available: %v", path, err)
	}
}
