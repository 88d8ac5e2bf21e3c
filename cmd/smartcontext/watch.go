package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"smartcontext/internal/cache"
	"smartcontext/internal/config"
	"smartcontext/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var debounceMs int
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a tree and keep the skeleton cache warm",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absRoot, err := filepath.Abs(rootArg(args))
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.Load(absRoot)
			if err != nil {
				return err
			}

			store, err := cache.Open(cache.DefaultPath(absRoot))
			if err != nil {
				return err
			}
			defer store.Close()

			w, err := watch.New(absRoot, store, watch.Config{
				Scan:     cfg.ScanConfig(),
				Debounce: time.Duration(debounceMs) * time.Millisecond,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&debounceMs, "debounce", 0, "debounce interval in milliseconds")
	return cmd
}
