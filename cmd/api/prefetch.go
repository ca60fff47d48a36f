package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func prefetchCmd(configFile *string) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Warm the memo cache with the current week of every doctor",
		Long: "Runs the prefetch worker on its own, e.g. next to several servers sharing a Redis cache. " +
			"With --once a single pass is made.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cache == nil {
				return errors.New("prefetching needs cache.enabled")
			}

			p, err := newPrefetcher(a)
			if err != nil {
				return err
			}
			if once {
				return p.RunOnce(ctx)
			}
			p.Start(ctx)
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Make one pass and exit")
	return cmd
}
