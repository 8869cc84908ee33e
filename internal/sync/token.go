package sync

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/utils"
)

const (
	// StoreContent and StoreMedia are the tracked stores, each with its
	// own continuation token.
	StoreContent = "content"
	StoreMedia   = "media"

	tokenFileName = ".inkwell-token"

	// legacyTokenFile is the pre-0.2 single-token location at the
	// workspace root, honored once and then retired.
	legacyTokenFile = ".sync-token"
)

// TokenStore persists one opaque continuation token per tracked store,
// colocated with that store's local directory. A missing token means the
// next fetch is a full one.
type TokenStore struct {
	root string
}

func NewTokenStore(root string) *TokenStore {
	return &TokenStore{root: root}
}

func (ts *TokenStore) path(store string) string {
	return filepath.Join(ts.root, store, tokenFileName)
}

func (ts *TokenStore) legacyPath() string {
	return filepath.Join(ts.root, legacyTokenFile)
}

// Load returns the stored token for the store, or "" when none exists. The
// legacy root-level token is honored for the content store until the first
// successful save retires it.
func (ts *TokenStore) Load(store string) (string, error) {
	data, err := os.ReadFile(ts.path(store))
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read sync token: %w", err)
	}

	if store == StoreContent {
		data, err := os.ReadFile(ts.legacyPath())
		if err == nil {
			slog.Info("using legacy sync token location", "path", ts.legacyPath())
			return strings.TrimSpace(string(data)), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read legacy sync token: %w", err)
		}
	}

	return "", nil
}

// Save persists the token for the store and deletes the legacy file once
// the new location holds a token.
func (ts *TokenStore) Save(store, token string) error {
	if token == "" {
		return nil
	}
	path := ts.path(store)
	if err := utils.EnsureParent(path); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o644); err != nil {
		return fmt.Errorf("write sync token: %w", err)
	}

	if store == StoreContent {
		if err := os.Remove(ts.legacyPath()); err == nil {
			slog.Info("retired legacy sync token", "path", ts.legacyPath())
		} else if !os.IsNotExist(err) {
			slog.Warn("failed to remove legacy sync token", "path", ts.legacyPath(), "error", err)
		}
	}

	return nil
}
