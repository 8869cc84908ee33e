package main

import (
	"github.com/spf13/cobra"

	"github.com/inkwell-cms/inkwell/internal/inksdk"
	"github.com/inkwell-cms/inkwell/internal/sync"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	var force bool
	var skipMedia bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull remote changes into the workspace",
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

			engine := sync.NewEngine(cfg.Workspace, cfg.Locale, sdk.Content, sdk.Media)
			res, err := engine.Sync(cmd.Context(), sync.Options{
				ForceOverwrite: force,
				SkipMedia:      skipMedia,
			})
			if res != nil {
				printRunResult(cmd, res)
			}
			return err
		},
	}

	syncCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite local edits instead of merging")
	syncCmd.Flags().BoolVar(&skipMedia, "skip-media", false, "Leave the media store untouched")

	return syncCmd
}
