package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/whisperctl/internal/config"
)

// New resolves the configured backend and returns a ready Engine.
//
// Backend "auto" prefers the native bindings and falls back to the whisper-cli
// subprocess (installing it on demand). Explicit backends select exactly that
// implementation and fail when it is unavailable.
func New(ctx context.Context, cfg config.EngineConfig, modelPath string, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := config.NormalizeBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendStub:
		logger.Warn("stub engine forced by configuration")
		return NewStub(logger), nil

	case config.BackendNative:
		eng, err := NewNative(modelPath)
		if err != nil {
			return nil, fmt.Errorf("native backend: %w", err)
		}
		logger.Info("native engine ready", "model_path", modelPath)
		return eng, nil

	case config.BackendCLI:
		return newCLIEngine(ctx, cfg, modelPath, logger)

	case config.BackendAuto:
		if NativeAvailable() {
			eng, err := NewNative(modelPath)
			if err == nil {
				logger.Info("native engine ready", "model_path", modelPath)
				return eng, nil
			}
			logger.Warn("native engine initialisation failed; trying whisper-cli", "error", err)
		}
		return newCLIEngine(ctx, cfg, modelPath, logger)

	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}

func newCLIEngine(ctx context.Context, cfg config.EngineConfig, modelPath string, logger *slog.Logger) (Engine, error) {
	installer := &Installer{ExecutablePath: cfg.CLIPath}

	path, err := installer.Ensure(ctx)
	if err != nil {
		return nil, fmt.Errorf("cli backend: %w", err)
	}

	logger.Info("cli engine ready", "executable", path, "model_path", modelPath)
	return NewCLI(path, modelPath), nil
}
