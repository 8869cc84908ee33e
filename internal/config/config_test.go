package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_NormalizesAndDefaults(t *testing.T) {
	tmp := t.TempDir()
	cfg := &Config{
		Workspace: tmp,
		ServerURL: "http://127.0.0.1:8080/",
		Locale:    "EN-us",
		Path:      filepath.Join(tmp, "config.json"),
	}

	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.Workspace))
	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL, "trailing slash stripped")
	assert.Equal(t, "en-us", cfg.Locale)
}

func TestConfig_Validate_FillsDefaults(t *testing.T) {
	cfg := &Config{Workspace: t.TempDir()}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultLocale, cfg.Locale)
}

func TestConfig_Validate_ErrorsOnInvalidInputs(t *testing.T) {
	tmp := t.TempDir()

	t.Run("missing workspace", func(t *testing.T) {
		cfg := &Config{ServerURL: "http://127.0.0.1:8080"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("workspace is a file", func(t *testing.T) {
		file := filepath.Join(tmp, "not-a-dir")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		cfg := &Config{Workspace: file, ServerURL: "http://127.0.0.1:8080"}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("bad server url", func(t *testing.T) {
		cfg := &Config{
			Workspace: tmp,
			ServerURL: "ftp://bad.example.com",
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "server url")
	})
}

func TestConfig_SaveAndLoad_Roundtrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "config.json")

	cfg := &Config{
		Workspace: tmp,
		ServerURL: "http://127.0.0.1:8080",
		APIKey:    "ink_secret",
		Locale:    "de",
		Path:      path,
	}

	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Save())

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Workspace, loaded.Workspace)
	assert.Equal(t, cfg.ServerURL, loaded.ServerURL)
	assert.Equal(t, cfg.APIKey, loaded.APIKey)
	assert.Equal(t, cfg.Locale, loaded.Locale)
	assert.Equal(t, path, loaded.Path)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
