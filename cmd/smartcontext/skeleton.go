package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartcontext/internal/skeleton"
)

func newSkeletonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skeleton FILE",
		Short: "Print the skeleton of a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			_, err = fmt.Fprint(os.Stdout, skeleton.Reduce(string(data)))
			return err
		},
	}
}
