package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/example/whisperctl/internal/doctor"
	"github.com/example/whisperctl/internal/engine"
	"github.com/example/whisperctl/internal/model"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local environment and model checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			art := model.Artifact{Size: cfg.Model.Size, Lang: cfg.Model.Lang}

			dcfg := doctor.Config{
				ModelPath:       art.LocalPath(cfg.ModelsDir()),
				DataDir:         cfg.Paths.DataDir,
				NativeAvailable: engine.NativeAvailable(),
				CLIVersion: func() (string, error) {
					return probeCLI(cfg.Engine.CLIPath)
				},
			}

			result := doctor.Run(dcfg, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

// probeCLI resolves the whisper-cli executable on PATH and reports where it lives.
func probeCLI(exe string) (string, error) {
	if exe == "" {
		exe = "whisper-cli"
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", exe, err)
	}

	return path, nil
}
