package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	ts := NewTokenStore(root)

	tok, err := ts.Load(StoreContent)
	require.NoError(t, err)
	assert.Empty(t, tok, "missing token means full fetch")

	require.NoError(t, ts.Save(StoreContent, "tok-123"))
	tok, err = ts.Load(StoreContent)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)

	// stores are independent
	tok, err = ts.Load(StoreMedia)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, ts.Save(StoreMedia, "media-9"))
	tok, err = ts.Load(StoreMedia)
	require.NoError(t, err)
	assert.Equal(t, "media-9", tok)
}

func TestTokenStoreEmptySaveIsNoop(t *testing.T) {
	root := t.TempDir()
	ts := NewTokenStore(root)

	require.NoError(t, ts.Save(StoreContent, "keep"))
	require.NoError(t, ts.Save(StoreContent, ""))

	tok, err := ts.Load(StoreContent)
	require.NoError(t, err)
	assert.Equal(t, "keep", tok, "empty token must not clobber the stored one")
}

func TestTokenStoreLegacyMigration(t *testing.T) {
	root := t.TempDir()
	legacy := filepath.Join(root, ".sync-token")
	require.NoError(t, os.WriteFile(legacy, []byte("legacy-tok\n"), 0o644))

	ts := NewTokenStore(root)

	// legacy location honored while no new token exists
	tok, err := ts.Load(StoreContent)
	require.NoError(t, err)
	assert.Equal(t, "legacy-tok", tok)

	// legacy never applies to the media store
	tok, err = ts.Load(StoreMedia)
	require.NoError(t, err)
	assert.Empty(t, tok)

	// a successful save retires the legacy file
	require.NoError(t, ts.Save(StoreContent, "new-tok"))
	assert.NoFileExists(t, legacy)

	tok, err = ts.Load(StoreContent)
	require.NoError(t, err)
	assert.Equal(t, "new-tok", tok)
}

func TestTokenStoreNewLocationWinsOverLegacy(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".sync-token"), []byte("legacy"), 0o644))

	ts := NewTokenStore(root)
	require.NoError(t, ts.Save(StoreContent, "current"))

	tok, err := ts.Load(StoreContent)
	require.NoError(t, err)
	assert.Equal(t, "current", tok)
}
