// Package cli implements the pyano command-line interface using Cobra:
// pull, load, unload, status, list, chat, and chain subcommands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pyano",
	Short: "pyano — local LLM lifecycle manager and agent chain runner",
	Long: `pyano loads, supervises, and evicts local llama.cpp-family model
processes on demand, and chains prompts through them as Sequential Agents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from cmd/pyano/main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
