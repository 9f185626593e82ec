package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/extract"
	"github.com/mohammad-safakhou/opticqa/internal/ingest"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	srv "github.com/mohammad-safakhou/opticqa/internal/server"
	"github.com/spf13/cobra"
)

func ingestCMD(cfgPath *string) *cobra.Command {
	var plainText bool
	var cmdIngest = &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Run local files through the upload pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, cancel := runtime.SignalContext(cmd.Context(), "ingest")
			defer cancel()

			app, err := srv.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			pipeline := app.Pipeline
			if plainText {
				pipeline = app.NewPipeline(extract.Text{})
			}

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				res, err := pipeline.Ingest(ctx, ingest.Upload{Filename: filepath.Base(path), Data: data})
				switch {
				case errors.Is(err, ingest.ErrDuplicateDocument):
					fmt.Fprintf(out, "%s: already uploaded, skipped\n", path)
				case err != nil:
					failed++
					fmt.Fprintf(out, "%s: %v\n", path, err)
				default:
					fmt.Fprintf(out, "%s: stored as %s (%d chunks)\n", path, res.DocumentID, res.Chunks)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	cmdIngest.Flags().BoolVar(&plainText, "text", false, "treat files as plain text instead of PDF")

	return cmdIngest
}
