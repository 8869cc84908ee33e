package sync

import (
	"github.com/inkwell-cms/inkwell/internal/content"
)

// remoteIndex resolves a local item to its remote counterpart using the
// identity priority order: recorded id, (slug, locale), front-matter slug
// (covers local renames), then (title, locale) as a last resort.
type remoteIndex struct {
	byID          map[string]*content.RemoteItem
	bySlugLocale  map[string]*content.RemoteItem
	byTitleLocale map[string]*content.RemoteItem
}

func identityKey(a, b string) string {
	return a + "\x00" + b
}

func newRemoteIndex(remotes []*content.RemoteItem) *remoteIndex {
	idx := &remoteIndex{
		byID:          make(map[string]*content.RemoteItem, len(remotes)),
		bySlugLocale:  make(map[string]*content.RemoteItem, len(remotes)),
		byTitleLocale: make(map[string]*content.RemoteItem, len(remotes)),
	}
	for _, r := range remotes {
		idx.byID[r.ID] = r
		idx.bySlugLocale[identityKey(r.Slug, r.Language)] = r
		if r.Title != "" {
			idx.byTitleLocale[identityKey(r.Title, r.Language)] = r
		}
	}
	return idx
}

func (idx *remoteIndex) resolve(local *content.LocalItem, claimed map[string]bool) *content.RemoteItem {
	candidates := make([]*content.RemoteItem, 0, 4)

	if id := local.ID(); id != "" {
		candidates = append(candidates, idx.byID[id])
	}
	candidates = append(candidates, idx.bySlugLocale[identityKey(local.Slug, local.Locale)])
	if metaSlug := local.MetaSlug(); metaSlug != "" {
		candidates = append(candidates, idx.bySlugLocale[identityKey(metaSlug, local.Locale)])
	}
	if title := local.Title(); title != "" {
		candidates = append(candidates, idx.byTitleLocale[identityKey(title, local.Locale)])
	}

	for _, r := range candidates {
		if r != nil && !claimed[r.ID] {
			return r
		}
	}
	return nil
}

// Classify compares the local snapshot against the remote snapshot and
// partitions every difference into a bucket. allowDelete opts in to
// emitting remote items unknown to the local tree as deletes; without it
// unknown remote items are left alone.
func Classify(locals []*content.LocalItem, remotes []*content.RemoteItem, baseItems map[string]*content.RemoteItem, allowDelete bool) *ChangeSet {
	cs := &ChangeSet{}
	idx := newRemoteIndex(remotes)

	claimed := make(map[string]bool, len(locals))
	localIDs := make(map[string]bool, len(locals))

	for _, local := range locals {
		if id := local.ID(); id != "" {
			localIDs[id] = true
		}

		remote := idx.resolve(local, claimed)
		if remote == nil {
			cs.Create = append(cs.Create, &Operation{Op: OpCreate, Local: local})
			continue
		}
		claimed[remote.ID] = true
		localIDs[remote.ID] = true

		slugChanged := remote.Slug != local.Slug
		typeChanged := remote.Type != local.Type

		// A remote strictly newer than the local copy's recorded timestamp
		// means concurrent remote edits; local changes must not clobber them.
		if remote.UpdatedAt.After(local.UpdatedAt()) {
			cs.Conflict = append(cs.Conflict, &Operation{
				Op:     OpConflict,
				Local:  local,
				Remote: remote,
				Reason: conflictReason(slugChanged, typeChanged),
			})
			continue
		}

		// Structural changes outrank content diffs: a rename or retype is
		// the reportable change, content rides along with the overwrite.
		switch {
		case slugChanged && typeChanged:
			cs.TypeChange = append(cs.TypeChange, &Operation{
				Op:      OpTypeChange,
				Local:   local,
				Remote:  remote,
				OldSlug: remote.Slug,
				OldType: remote.Type,
				NewType: local.Type,
			})
			continue
		case slugChanged:
			cs.Rename = append(cs.Rename, &Operation{
				Op:      OpRename,
				Local:   local,
				Remote:  remote,
				OldSlug: remote.Slug,
			})
			continue
		case typeChanged:
			cs.TypeChange = append(cs.TypeChange, &Operation{
				Op:      OpTypeChange,
				Local:   local,
				Remote:  remote,
				OldType: remote.Type,
				NewType: local.Type,
			})
			continue
		}

		if contentEqual(local, remote) {
			continue // already in sync, not enumerated
		}

		var base *content.RemoteItem
		if baseItems != nil {
			base = baseItems[remote.ID]
		}
		cs.Update = append(cs.Update, &Operation{
			Op:     OpUpdate,
			Local:  local,
			Remote: remote,
			Base:   base,
		})
	}

	if allowDelete {
		for _, remote := range remotes {
			if !claimed[remote.ID] && !localIDs[remote.ID] {
				cs.Delete = append(cs.Delete, &Operation{Op: OpDelete, Remote: remote})
			}
		}
	}

	return cs
}

func conflictReason(slugChanged, typeChanged bool) ConflictReason {
	switch {
	case slugChanged && typeChanged:
		return ReasonSlugAndType
	case slugChanged:
		return ReasonSlug
	case typeChanged:
		return ReasonType
	default:
		return ReasonContent
	}
}

// contentEqual re-renders the remote item into the local file representation
// and compares the normalized texts. Timestamp fields are excluded so a
// token refresh alone never reads as a content change.
func contentEqual(local *content.LocalItem, remote *content.RemoteItem) bool {
	localText := renderForCompare(local.Format, local.Metadata, local.Body)
	remoteText := renderForCompare(local.Format, remote.Metadata(), remote.Body)
	return Normalize(localText) == Normalize(remoteText)
}

var volatileMetaKeys = []string{"createdAt", "updatedAt"}

func renderForCompare(format content.Format, meta map[string]any, body string) string {
	trimmed := make(map[string]any, len(meta))
	for k, v := range meta {
		trimmed[k] = v
	}
	for _, k := range volatileMetaKeys {
		delete(trimmed, k)
	}

	data, err := content.Render(format, trimmed, body)
	if err != nil {
		// fall back to body-only comparison
		return body
	}
	return string(data)
}
