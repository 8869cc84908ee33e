package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/inkwell-cms/inkwell/internal/sync"
)

func printRunResult(cmd *cobra.Command, res *sync.RunResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s created %d, overwritten %d, merged %d, deleted %d\n",
		green("synced:"), res.Created, res.Overwritten, res.Merged, res.Deleted)
	if res.MediaDownloaded > 0 || res.MediaDeleted > 0 {
		fmt.Fprintf(out, "%s downloaded %d, deleted %d\n", cyan("media:"), res.MediaDownloaded, res.MediaDeleted)
	}
	if res.Conflicts > 0 {
		fmt.Fprintf(out, "%s %d conflict marker block(s) written, resolve them before pushing\n", yellow("conflicts:"), res.Conflicts)
	}
	if res.Failed > 0 {
		fmt.Fprintf(out, "%s %d item(s) failed, see the log\n", red("failed:"), res.Failed)
	}
}

func printChangeSet(cmd *cobra.Command, cs *sync.ChangeSet) {
	out := cmd.OutOrStdout()

	if cs.Empty() {
		fmt.Fprintln(out, green("workspace is in sync"))
		return
	}

	for _, op := range cs.Create {
		fmt.Fprintf(out, "%s %s (%s)\n", green("create"), op.Local.Slug, op.Local.Locale)
	}
	for _, op := range cs.Update {
		fmt.Fprintf(out, "%s %s (%s)\n", cyan("update"), op.Local.Slug, op.Local.Locale)
	}
	for _, op := range cs.Rename {
		fmt.Fprintf(out, "%s %s -> %s\n", cyan("rename"), op.OldSlug, op.Local.Slug)
	}
	for _, op := range cs.TypeChange {
		if op.OldSlug != "" {
			fmt.Fprintf(out, "%s %s -> %s [%s -> %s]\n", cyan("retype"), op.OldSlug, op.Local.Slug, op.OldType, op.NewType)
			continue
		}
		fmt.Fprintf(out, "%s %s [%s -> %s]\n", cyan("retype"), op.Local.Slug, op.OldType, op.NewType)
	}
	for _, op := range cs.Conflict {
		fmt.Fprintf(out, "%s %s (%s)\n", yellow("conflict"), op.Local.Slug, op.Reason)
	}
	for _, op := range cs.Delete {
		fmt.Fprintf(out, "%s %s (%s)\n", red("delete"), op.Remote.Slug, op.Remote.Language)
	}

	printSummaryLine(out, cs)
}

func printSummaryLine(out io.Writer, cs *sync.ChangeSet) {
	fmt.Fprintf(out, "%d change(s): %d create, %d update, %d rename, %d retype, %d conflict, %d delete\n",
		cs.Total(), len(cs.Create), len(cs.Update), len(cs.Rename), len(cs.TypeChange), len(cs.Conflict), len(cs.Delete))
}
