package main

import (
	"fmt"

	"github.com/phambaophuc/image-derivative/internal/app"
	"github.com/phambaophuc/image-derivative/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var warmCmd = &cobra.Command{
	Use:   "warm KEY SIZE...",
	Short: "Pre-generate resize derivatives of an object",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runWarm,
}

func init() {
	warmCmd.Flags().Int("workers", 4, "Concurrent transforms")
}

func runWarm(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Service.Warm(cmd.Context(), args[0], args[1:], workers)

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "%-10s failed: %v\n", r.Size, r.Err)
			continue
		}
		fmt.Fprintf(out, "%-10s %s\n", r.Size, r.URL)
	}

	return err
}
