// Package config loads the host-supplied settings the engine needs:
// identifier rendering (DOI prefix/namespace, URN namespace), the database
// connection, the operative timezone, and logging level. Loading
// configuration is a host concern: the engine never sees a Config; the
// host passes the resolved values on to the store, encoder and logger it
// builds.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"
)

// Database holds the backend connection parameters recognized by the
// engine's Store. Driver selects which SQL dialect adapter to use; see
// internal/store.
type Database struct {
	Driver   string `json:"driver"` // "postgres", "mysql", "sqlserver", or "sqlite3"
	URL      string `json:"url,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// Config is the full set of options the engine and its host binaries
// recognize. Fields map directly onto the configuration keys doi_prefix,
// doi_namespace, urn_namespace, timezone, database.* and log_level.
type Config struct {
	DOIPrefix    string   `json:"doi_prefix"`
	DOINamespace string   `json:"doi_namespace"`
	URNNamespace string   `json:"urn_namespace"`
	Timezone     string   `json:"timezone"`
	Database     Database `json:"database"`
	LogLevel     string   `json:"log_level,omitempty"`
}

// Default returns the configuration used by the test corpus: DOI prefix
// "10.5072", namespace "dans" for both kinds, UTC, and an unset database
// (callers must fill in Database before use).
func Default() Config {
	return Config{
		DOIPrefix:    "10.5072",
		DOINamespace: "dans",
		URNNamespace: "dans",
		Timezone:     "UTC",
		LogLevel:     "info",
	}
}

// Location resolves the configured timezone to a *time.Location, falling
// back to UTC if the zone name is empty or unknown.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// Load reads a HuJSON (JSON-with-comments) configuration file at path,
// layering it over Default. HuJSON lets operators annotate deployment
// configs with comments and trailing commas without a separate parser.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(standard, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return cfg, nil
}
