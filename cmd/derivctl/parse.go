package main

import (
	"fmt"

	"github.com/phambaophuc/image-derivative/internal/config"
	"github.com/phambaophuc/image-derivative/internal/services/sizespec"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse SIZE...",
	Short: "Check size tokens against the allow-list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	parser := sizespec.NewParser(cfg.Image.AllowedSizes)

	out := cmd.OutOrStdout()
	invalid := 0
	for _, size := range args {
		spec, err := parser.Parse(size)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "%-10s invalid\n", size)
			continue
		}
		fmt.Fprintf(out, "%-10s width=%d height=%d\n", size, spec.Width, spec.Height)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d sizes invalid", invalid, len(args))
	}
	return nil
}
