package main

import (
	"fmt"

	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/ingest"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	srv "github.com/mohammad-safakhou/opticqa/internal/server"
	"github.com/spf13/cobra"
)

func seedCMD(cfgPath *string) *cobra.Command {
	var force bool
	var seed = &cobra.Command{
		Use:   "seed",
		Short: "Embed and store the built-in reference corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, cancel := runtime.SignalContext(cmd.Context(), "seed")
			defer cancel()

			app, err := srv.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if cfg.Retrieval.Source == config.SourceChunks {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: retrieval.source is \"chunks\"; /ask will not read seeded rows until it is \"seed\" or \"all\"")
			}
			res, err := app.Seeder(!force).Seed(ctx, ingest.DefaultCorpus)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "seed table is not empty; use --force to seed again")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents\n", res.Inserted)
			return nil
		},
	}
	seed.Flags().BoolVar(&force, "force", false, "insert even when seed rows already exist")

	return seed
}
