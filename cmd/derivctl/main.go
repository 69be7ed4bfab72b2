package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "derivctl",
	Short:         "Operate the image derivative service",
	Long:          `Sign derivative URLs, inspect size tokens and pre-generate derivatives.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(warmCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
