package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd runs the web server when called without a subcommand
var rootCmd = &cobra.Command{
	Use:           "yatube [command]",
	Short:         "Yatube: a small blogging platform",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
