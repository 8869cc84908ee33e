package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell-cms/inkwell/internal/inksdk"
	"github.com/inkwell-cms/inkwell/internal/sync"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	var debounce time.Duration
	var skipMedia bool

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow remote changes and keep the workspace current",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := activeConfig()
			if err != nil {
				return err
			}

			sdk, err := inksdk.New(cfg.ServerURL, cfg.APIKey)
			if err != nil {
				return err
			}
			defer sdk.Close()

			engine := sync.NewEngine(cfg.Workspace, cfg.Locale, sdk.Content, sdk.Media)
			opts := sync.Options{ForceOverwrite: true, SkipMedia: skipMedia}

			// catch up before following the push channel
			if res, err := engine.Sync(cmd.Context(), opts); err != nil {
				return err
			} else {
				printRunResult(cmd, res)
			}

			if err := sdk.Events.Connect(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cyan("watching for remote changes, ctrl-c to stop"))

			scheduler := sync.NewScheduler(debounce, func(ctx context.Context) {
				res, err := engine.Sync(ctx, opts)
				if err != nil {
					slog.Error("scheduled sync failed", "error", err)
					return
				}
				printRunResult(cmd, res)
			})
			defer scheduler.Stop()

			scheduler.Listen(cmd.Context(), sdk.Events.Get())
			return nil
		},
	}

	watchCmd.Flags().DurationVar(&debounce, "debounce", sync.DefaultDebounce, "Quiet period before a notification triggers a sync")
	watchCmd.Flags().BoolVar(&skipMedia, "skip-media", false, "Leave the media store untouched")

	return watchCmd
}
