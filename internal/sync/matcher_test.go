package sync

import (
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func localItem(id, slug, locale, title, body string) *content.LocalItem {
	meta := map[string]any{
		"title":     title,
		"slug":      slug,
		"locale":    locale,
		"type":      "post",
		"updatedAt": syncedAt.Format(time.RFC3339),
	}
	if id != "" {
		meta["id"] = id
	}
	return &content.LocalItem{
		FilePath: "content/" + slug + "/" + locale + ".mdx",
		Slug:     slug,
		Locale:   locale,
		Type:     "post",
		Format:   content.FormatDocument,
		Metadata: meta,
		Body:     body,
	}
}

func remoteItem(id, slug, locale, title, body string) *content.RemoteItem {
	return &content.RemoteItem{
		ID:        id,
		Slug:      slug,
		Type:      "post",
		Language:  locale,
		Title:     title,
		Body:      body,
		UpdatedAt: syncedAt,
	}
}

func TestClassifyInSyncEmitsNothing(t *testing.T) {
	local := localItem("p1", "hello", "en", "Hello", "Body.\n")
	remote := remoteItem("p1", "hello", "en", "Hello", "Body.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	assert.True(t, cs.Empty(), "identical pair must not be enumerated")
}

func TestClassifyNormalizationNoise(t *testing.T) {
	local := localItem("p1", "hello", "en", "Hello", "Body.\r\n\r\n\r\n\r\nEnd.  \r\n")
	remote := remoteItem("p1", "hello", "en", "Hello", "Body.\n\nEnd.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	assert.True(t, cs.Empty(), "line endings and blank runs are not content changes")
}

func TestClassifyCreate(t *testing.T) {
	local := localItem("", "fresh", "en", "Fresh", "New.\n")

	cs := Classify([]*content.LocalItem{local}, nil, nil, false)
	require.Len(t, cs.Create, 1)
	assert.Equal(t, local, cs.Create[0].Local)
	assert.Equal(t, 1, cs.Total())
}

func TestClassifyUpdateOnContentChange(t *testing.T) {
	// scenario: local title "X", remote title "Y", timestamps equal
	local := localItem("p1", "a", "en", "X", "Body.\n")
	remote := remoteItem("p1", "a", "en", "Y", "Body.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.Update, 1, "equal timestamps with a content delta is an update, not a conflict")
	assert.Empty(t, cs.Conflict)
}

func TestClassifyConflictWhenRemoteNewer(t *testing.T) {
	local := localItem("p1", "a", "en", "X", "Body.\n")
	remote := remoteItem("p1", "a", "en", "Y", "Body.\n")
	remote.UpdatedAt = syncedAt.Add(time.Hour)

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.Conflict, 1)
	assert.Equal(t, ReasonContent, cs.Conflict[0].Reason)
	assert.Empty(t, cs.Update)
}

func TestClassifyConflictOutranksRenameAndType(t *testing.T) {
	local := localItem("p1", "new-slug", "en", "T", "Body.\n")
	local.Type = "page"
	remote := remoteItem("p1", "old-slug", "en", "T", "Body.\n")
	remote.UpdatedAt = syncedAt.Add(time.Minute)

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.Conflict, 1)
	assert.Equal(t, ReasonSlugAndType, cs.Conflict[0].Reason)
	assert.Empty(t, cs.Rename)
	assert.Empty(t, cs.TypeChange)
}

func TestClassifyConflictReasons(t *testing.T) {
	tests := []struct {
		name   string
		slug   string
		typ    string
		reason ConflictReason
	}{
		{"slug only", "moved", "post", ReasonSlug},
		{"type only", "a", "page", ReasonType},
		{"both", "moved", "page", ReasonSlugAndType},
		{"content", "a", "post", ReasonContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := localItem("p1", tt.slug, "en", "T", "Body.\n")
			local.Type = tt.typ
			remote := remoteItem("p1", "a", "en", "T", "Other.\n")
			remote.UpdatedAt = syncedAt.Add(time.Minute)

			cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
			require.Len(t, cs.Conflict, 1)
			assert.Equal(t, tt.reason, cs.Conflict[0].Reason)
		})
	}
}

func TestClassifyRename(t *testing.T) {
	// dir was renamed locally; front matter still records the old slug
	local := localItem("p1", "guides/new-name", "en", "T", "Changed body.\n")
	local.Metadata["slug"] = "guides/old-name"
	remote := remoteItem("p1", "guides/old-name", "en", "T", "Original body.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.Rename, 1)
	assert.Equal(t, "guides/old-name", cs.Rename[0].OldSlug)
	// rename wins; the content delta rides along with the overwrite
	assert.Empty(t, cs.Update)
	assert.Equal(t, 1, cs.Total())
}

func TestClassifyRenameByMetaSlugWithoutID(t *testing.T) {
	local := localItem("", "new-place", "en", "T", "Body.\n")
	local.Metadata["slug"] = "old-place"
	remote := remoteItem("p9", "old-place", "en", "T", "Body.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.Rename, 1)
	assert.Equal(t, "p9", cs.Rename[0].Remote.ID)
}

func TestClassifyTypeChange(t *testing.T) {
	local := localItem("p1", "a", "en", "T", "Body.\n")
	local.Type = "page"
	remote := remoteItem("p1", "a", "en", "T", "Body.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.TypeChange, 1)
	op := cs.TypeChange[0]
	assert.Equal(t, "post", op.OldType)
	assert.Equal(t, "page", op.NewType)
	assert.Empty(t, op.OldSlug)
}

func TestClassifyTypeChangeCarriesSlug(t *testing.T) {
	local := localItem("p1", "b", "en", "T", "Body.\n")
	local.Type = "page"
	remote := remoteItem("p1", "a", "en", "T", "Body.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.TypeChange, 1)
	assert.Equal(t, "a", cs.TypeChange[0].OldSlug)
	assert.Empty(t, cs.Rename, "slug change folds into the type change op")
}

func TestClassifyTitleFallbackMatch(t *testing.T) {
	local := localItem("", "anywhere", "en", "Unique Title", "Body.\n")
	remote := remoteItem("p5", "somewhere", "en", "Unique Title", "Body.\n")

	cs := Classify([]*content.LocalItem{local}, []*content.RemoteItem{remote}, nil, false)
	require.Len(t, cs.Rename, 1, "title+locale match resolves, then slug delta reports as rename")
	assert.Empty(t, cs.Create)
}

func TestClassifyDeleteOptIn(t *testing.T) {
	remote := remoteItem("gone", "gone", "en", "Gone", "Body.\n")

	cs := Classify(nil, []*content.RemoteItem{remote}, nil, false)
	assert.Empty(t, cs.Delete, "deletes are opt-in")

	cs = Classify(nil, []*content.RemoteItem{remote}, nil, true)
	require.Len(t, cs.Delete, 1)
	assert.Equal(t, "gone", cs.Delete[0].Remote.ID)
}

func TestClassifyEachItemAtMostOnce(t *testing.T) {
	// two locals claiming the same remote id: first match wins, the
	// second becomes a create
	a := localItem("p1", "a", "en", "A", "Body.\n")
	b := localItem("p1", "b", "en", "B", "Body.\n")
	remote := remoteItem("p1", "a", "en", "A", "Body.\n")

	cs := Classify([]*content.LocalItem{a, b}, []*content.RemoteItem{remote}, nil, true)
	assert.Len(t, cs.Create, 1)
	assert.Empty(t, cs.Delete)
}

func TestClassifyUpdateCarriesBase(t *testing.T) {
	local := localItem("p1", "a", "en", "X", "Body.\n")
	remote := remoteItem("p1", "a", "en", "Y", "Body.\n")
	base := remoteItem("p1", "a", "en", "Old", "Body.\n")

	cs := Classify(
		[]*content.LocalItem{local},
		[]*content.RemoteItem{remote},
		map[string]*content.RemoteItem{"p1": base},
		false,
	)
	require.Len(t, cs.Update, 1)
	assert.Equal(t, base, cs.Update[0].Base)
}
