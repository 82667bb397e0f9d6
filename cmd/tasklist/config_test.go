package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigUsesConfigFile(t *testing.T) {
	path := writeConfig(t, `{
  "backend": "sqlite",
  "alt_screen": true,
  "log_file": "tasks.log",
  "title": "Chores"
}
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Backend != backendSQLite {
		t.Errorf("expected backend sqlite, got %s", cfg.Backend)
	}
	if !cfg.AltScreen {
		t.Error("expected alt screen to be enabled")
	}
	if cfg.LogFile != "tasks.log" {
		t.Errorf("expected log file tasks.log, got %s", cfg.LogFile)
	}
	if cfg.Title != "Chores" {
		t.Errorf("expected title Chores, got %s", cfg.Title)
	}
}

func TestLoadConfigWithoutConfigFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Backend != defaultBackend {
		t.Errorf("expected default backend %s, got %s", defaultBackend, cfg.Backend)
	}
	if cfg.AltScreen || cfg.LogFile != "" || cfg.Title != "" {
		t.Errorf("expected zero defaults, got %+v", cfg)
	}
}

func TestLoadConfigFillsMissingBackend(t *testing.T) {
	path := writeConfig(t, `{"title": "Errands"}`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Backend != defaultBackend {
		t.Errorf("expected default backend %s, got %s", defaultBackend, cfg.Backend)
	}
}

func TestLoadConfigRejectsInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"backend": `)

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("unexpected error: %v", err)
	}
}
