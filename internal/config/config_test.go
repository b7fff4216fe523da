// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "procurerec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CatalogPath != "catalog.json" {
		t.Errorf("CatalogPath = %q, want default", cfg.CatalogPath)
	}
	if cfg.Engine.DefaultLimit != 10 {
		t.Errorf("Engine.DefaultLimit = %d, want 10", cfg.Engine.DefaultLimit)
	}
	if cfg.Holder.TTL != 15*time.Minute {
		t.Errorf("Holder.TTL = %s, want 15m", cfg.Holder.TTL)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfigFile(t, `
catalog_path: /srv/exports/catalog.json
engine:
  default_limit: 5
  cache_ttl: 30s
holder:
  ttl: 1h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CatalogPath != "/srv/exports/catalog.json" {
		t.Errorf("CatalogPath = %q", cfg.CatalogPath)
	}
	if cfg.Engine.DefaultLimit != 5 {
		t.Errorf("Engine.DefaultLimit = %d, want 5", cfg.Engine.DefaultLimit)
	}
	if cfg.Engine.CacheTTL != 30*time.Second {
		t.Errorf("Engine.CacheTTL = %s, want 30s", cfg.Engine.CacheTTL)
	}
	if cfg.Holder.TTL != time.Hour {
		t.Errorf("Holder.TTL = %s, want 1h", cfg.Holder.TTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Engine.MaxLimit != 100 {
		t.Errorf("Engine.MaxLimit = %d, want default 100", cfg.Engine.MaxLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PROCUREREC_LOGGING__LEVEL", "debug")
	t.Setenv("PROCUREREC_ENGINE__DEFAULT_LIMIT", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Engine.DefaultLimit != 7 {
		t.Errorf("Engine.DefaultLimit = %d, want 7", cfg.Engine.DefaultLimit)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := writeConfigFile(t, "engine:\n  default_limit: 5\n")
	t.Setenv("PROCUREREC_ENGINE__DEFAULT_LIMIT", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.DefaultLimit != 3 {
		t.Errorf("Engine.DefaultLimit = %d, want env override 3", cfg.Engine.DefaultLimit)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "weights not summing to 1",
			content: "engine:\n  weights:\n    semantic: 0.9\n",
		},
		{
			name:    "invalid log level",
			content: "logging:\n  level: verbose\n",
		},
		{
			name:    "empty catalog path",
			content: "catalog_path: \"\"\n",
		},
		{
			name:    "negative snapshot ttl",
			content: "holder:\n  ttl: -5s\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfigFile(t, tt.content)); err == nil {
				t.Error("Load() should reject invalid configuration")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() should fail for an explicitly named missing file")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PROCUREREC_CATALOG_PATH", "catalog_path"},
		{"PROCUREREC_ENGINE__CACHE_TTL", "engine.cache_ttl"},
		{"PROCUREREC_LOGGING__LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
