package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"smartcontext/internal/logging"
)

const version = "0.1.0"

var logger *slog.Logger

func newRootCmd() *cobra.Command {
	logger = logging.Default("smartcontext")

	rootCmd := &cobra.Command{
		Use:   "smartcontext",
		Short: "Copy a structure-only skeleton of a codebase for LLM context",
		Long: `smartcontext reduces source files to structural skeletons (class and
function signatures with empty bodies, imports and doc comments kept,
statement bodies removed) and assembles them into a single blob sized
for an LLM chat context.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newCopyCmd())
	rootCmd.AddCommand(newPrintCmd())
	rootCmd.AddCommand(newSkeletonCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("smartcontext v%s\n", version)
		},
	})

	return rootCmd
}

// rootArg returns the positional root directory, defaulting to the
// current directory.
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
