package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/inkwell-cms/inkwell/internal/content"
	"github.com/inkwell-cms/inkwell/internal/inksdk"
	"github.com/inkwell-cms/inkwell/internal/utils"
)

// ContentSource is the slice of the remote API the pull pipeline consumes.
type ContentSource interface {
	Changes(ctx context.Context, token string) (*inksdk.ChangesResult, error)
}

// MediaSource is the remote media store the pull pipeline consumes.
type MediaSource interface {
	Changes(ctx context.Context, token string) (*inksdk.MediaChangesResult, error)
	Download(ctx context.Context, path string) ([]byte, error)
}

// Options tune one pipeline run.
type Options struct {
	// ForceOverwrite disables three-way merging; the remote version always
	// wins. The notification scheduler runs with this set.
	ForceOverwrite bool
	// SkipMedia leaves the media store untouched.
	SkipMedia bool
}

// RunResult aggregates per-item outcomes of one pipeline run. Item failures
// are isolated and counted, never aborting the batch.
type RunResult struct {
	Created     int
	Overwritten int
	Merged      int
	Conflicts   int
	Deleted     int
	Failed      int

	MediaDownloaded int
	MediaDeleted    int
}

// Engine drives a fetch-classify-apply pass over the content and media
// stores of one workspace.
type Engine struct {
	contentDir string
	mediaDir   string
	reader     *content.Reader
	tokens     *TokenStore
	content    ContentSource
	media      MediaSource
}

func NewEngine(root, defaultLocale string, contentSrc ContentSource, mediaSrc MediaSource) *Engine {
	contentDir := filepath.Join(root, StoreContent)
	return &Engine{
		contentDir: contentDir,
		mediaDir:   filepath.Join(root, StoreMedia),
		reader:     content.NewReader(contentDir, defaultLocale),
		tokens:     NewTokenStore(root),
		content:    contentSrc,
		media:      mediaSrc,
	}
}

// Sync runs one incremental pass over both stores. A failure in one store
// never aborts the other; an authentication failure is fatal for the whole
// run. The stored continuation token only advances after a fully successful
// pass of its store.
func (e *Engine) Sync(ctx context.Context, opts Options) (*RunResult, error) {
	tstart := time.Now()
	res := &RunResult{}

	contentErr := e.syncContent(ctx, opts, res)
	if errors.Is(contentErr, inksdk.ErrAuthFailed) {
		return res, contentErr
	}

	var mediaErr error
	if !opts.SkipMedia && e.media != nil {
		mediaErr = e.syncMedia(ctx, res)
		if errors.Is(mediaErr, inksdk.ErrAuthFailed) {
			return res, mediaErr
		}
	}

	slog.Info("sync pass",
		"took", time.Since(tstart),
		"created", res.Created,
		"overwritten", res.Overwritten,
		"merged", res.Merged,
		"conflicts", res.Conflicts,
		"deleted", res.Deleted,
		"failed", res.Failed,
		"media_downloaded", res.MediaDownloaded,
		"media_deleted", res.MediaDeleted,
	)

	return res, errors.Join(contentErr, mediaErr)
}

func (e *Engine) syncContent(ctx context.Context, opts Options, res *RunResult) error {
	token, err := e.tokens.Load(StoreContent)
	if err != nil {
		return err
	}

	feed, err := e.content.Changes(ctx, token)
	if err != nil {
		return fmt.Errorf("content fetch: %w", err)
	}

	locals, err := e.reader.Read(ctx)
	if err != nil {
		return fmt.Errorf("local snapshot: %w", err)
	}
	idx := newLocalIndex(locals)
	failedBefore := res.Failed

	for _, remote := range feed.Items {
		if err := e.applyRemote(remote, idx, feed.BaseItems, opts, res); err != nil {
			slog.Warn("sync apply failed", "id", remote.ID, "slug", remote.Slug, "error", err)
			res.Failed++
		}
	}

	for _, id := range feed.Deleted {
		local := idx.byID[id]
		if local == nil {
			continue
		}
		if err := os.Remove(local.FilePath); err != nil {
			slog.Warn("sync delete failed", "id", id, "path", local.FilePath, "error", err)
			res.Failed++
			continue
		}
		res.Deleted++
	}

	// a failed item would never be redelivered once the token moves past
	// it, so an incomplete pass keeps the previous token and retries
	if res.Failed > failedBefore {
		slog.Warn("content pass incomplete, keeping previous token", "failed", res.Failed-failedBefore)
		return nil
	}

	return e.tokens.Save(StoreContent, feed.NextToken)
}

// applyRemote writes one changed remote item into the local tree: a plain
// write when the local copy is absent or untouched since the base version,
// a three-way merge when it was edited.
func (e *Engine) applyRemote(remote *content.RemoteItem, idx *localIndex, baseItems map[string]*content.RemoteItem, opts Options, res *RunResult) error {
	local := idx.resolve(remote)

	format := remote.Format
	if format == "" {
		format = content.FormatDocument
	}
	if local != nil {
		format = local.Format
	}

	remoteData, err := content.Render(format, remote.Metadata(), remote.Body)
	if err != nil {
		return fmt.Errorf("render remote item: %w", err)
	}

	if local == nil {
		path := content.PathFor(e.contentDir, remote.Slug, remote.Language, format)
		if err := utils.WriteFile(path, remoteData); err != nil {
			return err
		}
		res.Created++
		return nil
	}

	targetPath := local.FilePath
	if local.Slug != remote.Slug {
		// remote rename: the item moves to its new place in the tree
		targetPath = content.PathFor(e.contentDir, remote.Slug, local.Locale, format)
	}

	var base *content.RemoteItem
	if baseItems != nil {
		base = baseItems[remote.ID]
	}

	// Without a base version there is no way to tell local edits apart;
	// the remote version wins, same as in forced-overwrite mode.
	if opts.ForceOverwrite || base == nil {
		return e.finishWrite(local, targetPath, remoteData, res, false, 0)
	}

	// Pre-merge guard: a local copy identical to the base was never edited,
	// so this is an overwrite, not a merge.
	localCompare := Normalize(renderForCompare(format, local.Metadata, local.Body))
	baseCompare := Normalize(renderForCompare(format, base.Metadata(), base.Body))
	if localCompare == baseCompare {
		return e.finishWrite(local, targetPath, remoteData, res, false, 0)
	}

	merged, conflicts, err := e.merge(format, local, base, remote)
	if err != nil {
		return err
	}
	return e.finishWrite(local, targetPath, merged, res, true, conflicts)
}

func (e *Engine) merge(format content.Format, local *content.LocalItem, base, remote *content.RemoteItem) ([]byte, int, error) {
	if format == content.FormatRecord {
		fields, fieldConflicts := MergeFields(base.Metadata(), local.Metadata, remote.Metadata())
		body := MergeText(base.Body, local.Body, remote.Body)
		data, err := content.RenderRecord(fields, body.Merged)
		if err != nil {
			return nil, 0, fmt.Errorf("render merged record: %w", err)
		}
		return data, fieldConflicts + body.ConflictCount, nil
	}

	baseText, err := content.Render(format, base.Metadata(), base.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("render base item: %w", err)
	}
	localText, err := content.Render(format, local.Metadata, local.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("render local item: %w", err)
	}
	remoteText, err := content.Render(format, remote.Metadata(), remote.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("render remote item: %w", err)
	}

	result := MergeText(string(baseText), string(localText), string(remoteText))
	return []byte(result.Merged), result.ConflictCount, nil
}

func (e *Engine) finishWrite(local *content.LocalItem, targetPath string, data []byte, res *RunResult, merged bool, conflicts int) error {
	if err := utils.WriteFile(targetPath, data); err != nil {
		return err
	}
	if targetPath != local.FilePath {
		if err := os.Remove(local.FilePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove renamed file", "path", local.FilePath, "error", err)
		}
	}

	switch {
	case conflicts > 0:
		res.Conflicts += conflicts
		res.Merged++
		slog.Warn("merge conflicts need attention", "path", targetPath, "conflicts", conflicts)
	case merged:
		res.Merged++
	default:
		res.Overwritten++
	}
	return nil
}

func (e *Engine) syncMedia(ctx context.Context, res *RunResult) error {
	token, err := e.tokens.Load(StoreMedia)
	if err != nil {
		return err
	}

	feed, err := e.media.Changes(ctx, token)
	if err != nil {
		return fmt.Errorf("media fetch: %w", err)
	}

	for _, item := range feed.Items {
		data, err := e.media.Download(ctx, item.Path)
		if errors.Is(err, inksdk.ErrAssetNotFound) {
			// gone upstream between listing and download
			e.removeMedia(item.Path, res)
			continue
		}
		if err != nil {
			return fmt.Errorf("media download %q: %w", item.Path, err)
		}
		if err := utils.WriteFile(filepath.Join(e.mediaDir, filepath.FromSlash(item.Path)), data); err != nil {
			return err
		}
		res.MediaDownloaded++
	}

	for _, path := range feed.Deleted {
		e.removeMedia(path, res)
	}

	return e.tokens.Save(StoreMedia, feed.NextToken)
}

func (e *Engine) removeMedia(path string, res *RunResult) {
	full := filepath.Join(e.mediaDir, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("media delete failed", "path", full, "error", err)
		}
		return
	}
	res.MediaDeleted++
}

// localIndex resolves a remote item back to its local file, mirroring the
// classifier's identity priority from the other direction.
type localIndex struct {
	byID             map[string]*content.LocalItem
	bySlugLocale     map[string]*content.LocalItem
	byMetaSlugLocale map[string]*content.LocalItem
	byTitleLocale    map[string]*content.LocalItem
}

func newLocalIndex(locals []*content.LocalItem) *localIndex {
	idx := &localIndex{
		byID:             make(map[string]*content.LocalItem, len(locals)),
		bySlugLocale:     make(map[string]*content.LocalItem, len(locals)),
		byMetaSlugLocale: make(map[string]*content.LocalItem, len(locals)),
		byTitleLocale:    make(map[string]*content.LocalItem, len(locals)),
	}
	for _, l := range locals {
		if id := l.ID(); id != "" {
			idx.byID[id] = l
		}
		idx.bySlugLocale[identityKey(l.Slug, l.Locale)] = l
		if ms := l.MetaSlug(); ms != "" {
			idx.byMetaSlugLocale[identityKey(ms, l.Locale)] = l
		}
		if t := l.Title(); t != "" {
			idx.byTitleLocale[identityKey(t, l.Locale)] = l
		}
	}
	return idx
}

func (idx *localIndex) resolve(remote *content.RemoteItem) *content.LocalItem {
	if l := idx.byID[remote.ID]; l != nil {
		return l
	}
	key := identityKey(remote.Slug, remote.Language)
	if l := idx.bySlugLocale[key]; l != nil {
		return l
	}
	if l := idx.byMetaSlugLocale[key]; l != nil {
		return l
	}
	if remote.Title != "" {
		if l := idx.byTitleLocale[identityKey(remote.Title, remote.Language)]; l != nil {
			return l
		}
	}
	return nil
}
