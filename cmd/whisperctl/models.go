package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/example/whisperctl/internal/model"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known whisper model variants",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tSIZE\tLOCAL\tDESCRIPTION")

			for _, entry := range model.Catalog() {
				local := "-"
				if _, err := os.Stat(entry.Artifact.LocalPath(cfg.ModelsDir())); err == nil {
					local = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					entry.ID,
					entry.Artifact.Filename(),
					entry.SizeLabel,
					local,
					entry.Description,
				)
			}

			return tw.Flush()
		},
	}

	return cmd
}
