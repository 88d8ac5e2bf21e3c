package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"smartcontext/internal/bundle"
	"smartcontext/internal/cache"
	"smartcontext/internal/config"
	"smartcontext/internal/scan"
	"smartcontext/internal/sink"
)

type bundleFlags struct {
	full    bool
	noCache bool
	workers int
}

func addBundleFlags(cmd *cobra.Command, flags *bundleFlags) {
	cmd.Flags().BoolVar(&flags.full, "full", false, "include full file contents instead of skeletons")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "bypass the skeleton cache")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "concurrent reducers (default from config)")
}

func newCopyCmd() *cobra.Command {
	var flags bundleFlags
	cmd := &cobra.Command{
		Use:   "copy [path]",
		Short: "Assemble the skeleton bundle and copy it to the clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, rootArg(args), flags, sink.Clipboard{})
		},
	}
	addBundleFlags(cmd, &flags)
	return cmd
}

func newPrintCmd() *cobra.Command {
	var flags bundleFlags
	cmd := &cobra.Command{
		Use:   "print [path]",
		Short: "Assemble the skeleton bundle and write it to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, rootArg(args), flags, sink.Writer{W: os.Stdout})
		},
	}
	addBundleFlags(cmd, &flags)
	return cmd
}

func runBundle(cmd *cobra.Command, root string, flags bundleFlags, dest sink.Sink) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return err
	}

	files, err := scan.Collect(absRoot, cfg.ScanConfig())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no candidate files found", "root", absRoot)
	}

	var store *cache.Store
	if !cfg.NoCache && !flags.noCache && !flags.full {
		store, err = cache.Open(cache.DefaultPath(absRoot))
		if err != nil {
			// The cache only saves work; a broken one must not block a copy.
			logger.Warn("opening cache failed, continuing without", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	workers := flags.workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	out, err := bundle.Build(cmd.Context(), files, bundle.Options{
		Workers:     workers,
		FullContent: flags.full,
		Store:       store,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	if err := dest.Write(out); err != nil {
		return err
	}

	logger.Info("context assembled", "files", len(files), "bytes", len(out))
	return nil
}
