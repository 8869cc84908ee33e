package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/inkwell-cms/inkwell/internal/utils"
)

var (
	home, _            = os.UserHomeDir()
	DefaultConfigPath  = filepath.Join(home, ".inkwell", "config.json")
	DefaultLogFilePath = filepath.Join(home, ".inkwell", "logs", "inkwell.log")
	DefaultServerURL   = "https://api.inkwell.dev"
	DefaultLocale      = "en"
)

// Config is the persisted client configuration. Path is where it was loaded
// from and never travels with the file.
type Config struct {
	Workspace string `json:"workspace"`
	ServerURL string `json:"server_url"`
	APIKey    string `json:"api_key"`
	Locale    string `json:"locale"`
	Path      string `json:"-"`
}

// Validate normalizes paths and fills defaults, erroring on anything the
// sync pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Workspace == "" {
		return fmt.Errorf("workspace dir missing")
	}
	workspace, err := utils.ResolvePath(c.Workspace)
	if err != nil {
		return fmt.Errorf("workspace dir: %w", err)
	}
	if utils.FileExists(workspace) {
		return fmt.Errorf("workspace %q is a file, not a directory", workspace)
	}
	c.Workspace = workspace

	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q is not a valid http(s) url", c.ServerURL)
	}
	c.ServerURL = strings.TrimSuffix(c.ServerURL, "/")

	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	c.Locale = strings.ToLower(c.Locale)

	if c.Path != "" {
		path, err := utils.ResolvePath(c.Path)
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}
		c.Path = path
	}

	return nil
}

func (c *Config) Save() error {
	if c.Path == "" {
		return fmt.Errorf("config path missing")
	}
	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.Path, data, 0o644)
}

// LoadFromFile reads and validates a config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
