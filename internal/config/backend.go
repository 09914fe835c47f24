package config

import (
	"fmt"
	"strings"
)

const (
	BackendAuto   = "auto"
	BackendNative = "native"
	BackendCLI    = "cli"
	BackendStub   = "stub"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendAuto
	}
	switch backend {
	case BackendAuto, BackendNative, BackendCLI, BackendStub:
		return backend, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s|%s|%s)",
			raw,
			BackendAuto,
			BackendNative,
			BackendCLI,
			BackendStub,
		)
	}
}
