package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Blob     BlobConfig     `toml:"blob"`
	Postgres PostgresConfig `toml:"postgres"`
	Search   SearchConfig   `toml:"search"`
	Observer ObserverConfig `toml:"observer"`
}

// LibraryConfig selects the library store backend.
type LibraryConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver"`
	// Path is the sqlite database file.
	Path string `toml:"path"`
}

// BlobConfig locates extracted image storage.
type BlobConfig struct {
	Root string `toml:"root"`
	// BaseURL, when set, is the public prefix for stored image URLs.
	BaseURL string `toml:"base_url"`
}

type PostgresConfig struct {
	URL string `toml:"url"`
}

type SearchConfig struct {
	// Limit caps results per search query.
	Limit int `toml:"limit"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "/tmp"
	}
	root := filepath.Join(home, "folio")
	return Config{
		Library: LibraryConfig{Driver: "sqlite", Path: filepath.Join(root, "library.db")},
		Blob:    BlobConfig{Root: filepath.Join(root, "images")},
		Search:  SearchConfig{Limit: 20},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "folio.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("FOLIO_LIBRARY_DRIVER"); v != "" {
		cfg.Library.Driver = v
	}
	if v := os.Getenv("FOLIO_LIBRARY_PATH"); v != "" {
		cfg.Library.Path = v
	}
	if v := os.Getenv("FOLIO_BLOB_ROOT"); v != "" {
		cfg.Blob.Root = v
	}
	if v := os.Getenv("FOLIO_BLOB_BASE_URL"); v != "" {
		cfg.Blob.BaseURL = v
	}
	if v := os.Getenv("FOLIO_POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if os.Getenv("FOLIO_OBSERVER_ENABLED") == "true" || os.Getenv("FOLIO_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	// Fallbacks
	if cfg.Library.Driver == "postgres" && cfg.Postgres.URL == "" {
		cfg.Library.Driver = "sqlite"
	}
	if cfg.Search.Limit <= 0 {
		cfg.Search.Limit = 20
	}

	return cfg
}
