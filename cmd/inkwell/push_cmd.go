package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkwell-cms/inkwell/internal/content"
	"github.com/inkwell-cms/inkwell/internal/inksdk"
	"github.com/inkwell-cms/inkwell/internal/sync"
	"github.com/inkwell-cms/inkwell/internal/utils"
)

func init() {
	rootCmd.AddCommand(newPushCmd())
}

func newPushCmd() *cobra.Command {
	var allowDelete bool
	var dryRun bool

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Publish local changes to the remote store",
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

			contentDir := filepath.Join(cfg.Workspace, sync.StoreContent)
			locals, err := content.NewReader(contentDir, cfg.Locale).Read(cmd.Context())
			if err != nil {
				return err
			}

			remotes, err := sdk.Content.List(cmd.Context())
			if err != nil {
				return err
			}

			cs := sync.Classify(locals, remotes, nil, allowDelete)
			printChangeSet(cmd, cs)

			if dryRun || cs.Empty() {
				return nil
			}
			if len(cs.Conflict) > 0 {
				return fmt.Errorf("%d conflicting item(s); run a sync first", len(cs.Conflict))
			}

			return applyChangeSet(cmd, sdk, cs)
		},
	}

	pushCmd.Flags().BoolVar(&allowDelete, "delete", false, "Delete remote items missing from the workspace")
	pushCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be pushed without doing it")

	return pushCmd
}

func applyChangeSet(cmd *cobra.Command, sdk *inksdk.SDK, cs *sync.ChangeSet) error {
	ctx := cmd.Context()
	var failed int

	// structural changes first so upserts land on the final slug
	for _, op := range cs.Rename {
		if err := sdk.Content.Move(ctx, op.Remote.ID, op.Local.Slug, ""); err != nil {
			slog.Warn("push move failed", "id", op.Remote.ID, "slug", op.Local.Slug, "error", err)
			failed++
		}
	}
	for _, op := range cs.TypeChange {
		newSlug := ""
		if op.OldSlug != "" {
			newSlug = op.Local.Slug
		}
		if err := sdk.Content.Move(ctx, op.Remote.ID, newSlug, op.NewType); err != nil {
			slog.Warn("push retype failed", "id", op.Remote.ID, "type", op.NewType, "error", err)
			failed++
		}
	}

	for _, op := range append(cs.Create, cs.Update...) {
		item := op.Local.ToRemote()
		if op.Remote != nil {
			item.ID = op.Remote.ID
		}
		saved, err := sdk.Content.Upsert(ctx, item)
		if err != nil {
			slog.Warn("push upsert failed", "slug", item.Slug, "error", err)
			failed++
			continue
		}
		// record the server-assigned id and timestamps locally so the next
		// classify resolves this item by id
		data, err := content.Render(op.Local.Format, saved.Metadata(), saved.Body)
		if err == nil {
			err = utils.WriteFile(op.Local.FilePath, data)
		}
		if err != nil {
			slog.Warn("push writeback failed", "path", op.Local.FilePath, "error", err)
		}
	}

	for _, op := range cs.Delete {
		if err := sdk.Content.Delete(ctx, op.Remote.ID); err != nil {
			slog.Warn("push delete failed", "id", op.Remote.ID, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d push operation(s) failed", failed)
	}
	fmt.Fprintln(cmd.OutOrStdout(), green("push complete"))
	return nil
}
