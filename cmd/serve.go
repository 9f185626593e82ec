package main

import (
	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	srv "github.com/mohammad-safakhou/opticqa/internal/server"
	"github.com/spf13/cobra"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(*cfgPath)

			ctx, cancel := runtime.SignalContext(cmd.Context(), "serve")
			defer cancel()
			return srv.Run(ctx, cfg, serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.address or PORT)")

	return serve
}
