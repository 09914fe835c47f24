package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/example/whisperctl/internal/server"
	"github.com/example/whisperctl/internal/transcribe"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the transcription HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			pipeline := transcribe.NewSession(cfg, slog.Default())
			srv := server.New(cfg, pipeline)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	return cmd
}
