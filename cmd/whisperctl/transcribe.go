package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/example/whisperctl/internal/transcribe"
	"github.com/spf13/cobra"
)

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <audio_path>",
		Short: "Transcribe an audio file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			session := transcribe.NewSession(cfg, slog.Default())
			doc := session.Run(cmd.Context(), args[0])

			_, _ = fmt.Fprintln(os.Stdout, doc.JSON())

			// Failures are embedded in the printed document and the process
			// still exits zero; callers parse the payload, not the status.
			return nil
		},
	}

	return cmd
}
