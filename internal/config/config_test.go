package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pidgen.hujson")

	contents := `{
		// production database
		"doi_prefix": "10.5072",
		"doi_namespace": "acme",
		"urn_namespace": "acme",
		"timezone": "Europe/Amsterdam",
		"database": {
			"driver": "postgres",
			"url": "postgres://localhost/pidgen",
			"user": "pidgen",
		},
	}`

	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DOINamespace != "acme" {
		t.Fatalf("DOINamespace = %q, want acme", cfg.DOINamespace)
	}

	if cfg.Database.Driver != "postgres" {
		t.Fatalf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}

	if cfg.Location().String() != "Europe/Amsterdam" {
		t.Fatalf("Location() = %v, want Europe/Amsterdam", cfg.Location())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hujson"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestDefaultTimezoneFallsBackToUTC(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "Not/AZone"

	if cfg.Location() != nil && cfg.Location().String() != "UTC" {
		t.Fatalf("Location() = %v, want UTC for an unknown zone", cfg.Location())
	}
}
