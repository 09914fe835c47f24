package main

import (
	"context"
	"fmt"
	"os"

	"github.com/example/whisperctl/internal/model"
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	var verbose bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the configured whisper model from Hugging Face",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if verbose {
				setupLogger("debug")
			}

			fetcher := &model.Fetcher{
				Artifact:  model.Artifact{Size: cfg.Model.Size, Lang: cfg.Model.Lang},
				ModelsDir: cfg.ModelsDir(),
				Progress:  model.NewWriterProgress(os.Stdout),
				Stdout:    os.Stdout,
			}

			return runDownload(cmd.Context(), fetcher, verify)
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the model URL before downloading")

	return cmd
}

// runDownload optionally verifies the model URL before fetching. A failed
// verification aborts: no download request is issued.
func runDownload(ctx context.Context, fetcher *model.Fetcher, verify bool) error {
	if verify {
		if _, err := fetcher.Verify(ctx); err != nil {
			return fmt.Errorf("model URL verification failed, aborting download: %w", err)
		}
	}

	if err := fetcher.Ensure(ctx); err != nil {
		return fmt.Errorf("model download failed: %w", err)
	}

	return nil
}
