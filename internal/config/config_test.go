package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Library.Driver != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.Library.Driver)
	}
	if !strings.HasSuffix(cfg.Library.Path, "library.db") {
		t.Errorf("unexpected library path %s", cfg.Library.Path)
	}
	if cfg.Blob.Root == "" {
		t.Error("expected default blob root")
	}
	if cfg.Search.Limit != 20 {
		t.Errorf("expected limit 20, got %d", cfg.Search.Limit)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[library]
path = "/data/books.db"

[blob]
base_url = "https://cdn.example.com/images"

[search]
limit = 5
`), 0644)

	cfg := Load(path)
	if cfg.Library.Path != "/data/books.db" {
		t.Errorf("expected /data/books.db, got %s", cfg.Library.Path)
	}
	if cfg.Blob.BaseURL != "https://cdn.example.com/images" {
		t.Errorf("expected cdn base url, got %s", cfg.Blob.BaseURL)
	}
	if cfg.Search.Limit != 5 {
		t.Errorf("expected limit 5, got %d", cfg.Search.Limit)
	}
	// Defaults preserved
	if cfg.Library.Driver != "sqlite" {
		t.Errorf("default driver should be preserved, got %s", cfg.Library.Driver)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FOLIO_LIBRARY_PATH", "/env/books.db")
	t.Setenv("FOLIO_BLOB_ROOT", "/env/images")
	t.Setenv("FOLIO_OBSERVER_ENABLED", "1")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Library.Path != "/env/books.db" {
		t.Errorf("expected /env/books.db, got %s", cfg.Library.Path)
	}
	if cfg.Blob.Root != "/env/images" {
		t.Errorf("expected /env/images, got %s", cfg.Blob.Root)
	}
	if !cfg.Observer.Enabled {
		t.Error("expected observer enabled from env")
	}
}

func TestPostgresFallsBackWithoutURL(t *testing.T) {
	t.Setenv("FOLIO_LIBRARY_DRIVER", "postgres")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Library.Driver != "sqlite" {
		t.Errorf("expected fallback to sqlite, got %s", cfg.Library.Driver)
	}

	t.Setenv("FOLIO_POSTGRES_URL", "postgres://localhost/folio")
	cfg = Load("/nonexistent/path.toml")
	if cfg.Library.Driver != "postgres" {
		t.Errorf("expected postgres with URL set, got %s", cfg.Library.Driver)
	}
}
