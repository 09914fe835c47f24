// Package doctor provides environment preflight checks for whisperctl.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// ModelPath is the ggml artifact the configured model resolves to.
	ModelPath string
	// DataDir is the application data directory that must be writable.
	DataDir string
	// NativeAvailable reports whether the in-process whisper backend is compiled in.
	NativeAvailable bool
	// CLIVersion returns the output of `whisper-cli --version`.
	CLIVersion VersionFunc
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- model artifact ---------------------------------------------------
	if fi, err := os.Stat(cfg.ModelPath); err != nil {
		res.fail(fmt.Sprintf("model file %q: %v", cfg.ModelPath, err))
		fmt.Fprintf(w, "%s model file %s: not found (run `whisperctl download`)\n", FailMark, cfg.ModelPath)
	} else {
		fmt.Fprintf(w, "%s model file: %s (%.2f MB)\n", PassMark, cfg.ModelPath, float64(fi.Size())/(1024*1024))
	}

	// ---- transcription backend --------------------------------------------
	if cfg.NativeAvailable {
		fmt.Fprintf(w, "%s native whisper backend: compiled in\n", PassMark)
	} else {
		fmt.Fprintf(w, "%s native whisper backend: not compiled in (falling back to whisper-cli)\n", PassMark)

		ver, err := cfg.CLIVersion()
		if err != nil {
			res.fail(fmt.Sprintf("whisper-cli: %v", err))
			fmt.Fprintf(w, "%s whisper-cli: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s whisper-cli: %s\n", PassMark, ver)
		}
	}

	// ---- data directory ---------------------------------------------------
	if err := checkWritable(cfg.DataDir); err != nil {
		res.fail(fmt.Sprintf("data dir %q: %v", cfg.DataDir, err))
		fmt.Fprintf(w, "%s data dir %s: not writable (%v)\n", FailMark, cfg.DataDir, err)
	} else {
		fmt.Fprintf(w, "%s data dir: %s\n", PassMark, cfg.DataDir)
	}

	return res
}

// checkWritable creates the directory if needed and probes it with a temp file.
func checkWritable(dir string) error {
	if dir == "" {
		return fmt.Errorf("data dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
