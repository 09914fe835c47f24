package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Installer ensures the whisper-cli executable is available, installing it
// through the platform package manager on demand. This is best-effort
// self-healing: no version pinning, no rollback.
type Installer struct {
	ExecutablePath string

	// LookPath and RunCommand are injectable for tests; nil means the real
	// exec.LookPath / exec.CommandContext.
	LookPath   func(file string) (string, error)
	RunCommand func(ctx context.Context, name string, args ...string) error
}

func (i *Installer) lookPath(file string) (string, error) {
	if i.LookPath != nil {
		return i.LookPath(file)
	}
	return exec.LookPath(file)
}

func (i *Installer) run(ctx context.Context, name string, args ...string) error {
	if i.RunCommand != nil {
		return i.RunCommand(ctx, name, args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Ensure succeeds with no side effect when the executable is already on PATH.
// Otherwise it attempts one package-manager install and re-checks. Success is
// defined by the install subprocess exiting zero and the binary resolving.
func (i *Installer) Ensure(ctx context.Context) (string, error) {
	exe := i.ExecutablePath
	if exe == "" {
		exe = "whisper-cli"
	}

	if path, err := i.lookPath(exe); err == nil {
		return path, nil
	}

	mgr, args := installCommand()
	if mgr == "" {
		return "", fmt.Errorf("%s not found and no supported package manager on %s", exe, runtime.GOOS)
	}

	if err := i.run(ctx, mgr, args...); err != nil {
		return "", fmt.Errorf("install %s via %s: %w", exe, mgr, err)
	}

	path, err := i.lookPath(exe)
	if err != nil {
		return "", fmt.Errorf("%s still not found after install: %w", exe, err)
	}
	return path, nil
}

// installCommand picks the platform package-manager invocation for whisper.cpp.
func installCommand() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "brew", []string{"install", "whisper-cpp"}
	case "linux":
		return "apt-get", []string{"install", "-y", "whisper-cpp"}
	default:
		return "", nil
	}
}
