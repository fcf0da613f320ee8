// Package cli implements the hfdl command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/hfdl/internal/logging"
)

// NewRootCmd creates the root command for hfdl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hfdl",
		Short: "Generate download scripts for Hugging Face mirrors",
		Long: `hfdl scrapes the file listing of a Hugging Face repository on a mirror
(hf-mirror.com by default) and produces a bash script that downloads every
file with wget.

Run "hfdl serve" to expose the generator over HTTP, or "hfdl generate" for a
one-off script.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().String("config", "", "Config file (default ./.hfdl.yaml, then $XDG_CONFIG_HOME/hfdl/config.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON lines")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose, jsonLogs bool, component string) logging.Logger {
	return logging.NewLogger(w, logging.Options{Verbose: verbose, JSON: jsonLogs, Component: component})
}
