package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string
	var root = &cobra.Command{
		Use:          "opticqa",
		Short:        "Question answering over clinic reference documents",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")

	root.AddCommand(serveCMD(&cfgPath), migrateCMD(&cfgPath), seedCMD(&cfgPath), ingestCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
