package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/internal/store/storetest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// stubRunners replaces both command runners and records which one ran.
func stubRunners(t *testing.T) (*string, *config) {
	t.Helper()
	originalRunTUI := runTUI
	originalRunMCP := runMCP
	t.Cleanup(func() {
		runTUI = originalRunTUI
		runMCP = originalRunMCP
	})

	var called string
	var got config
	runTUI = func(ctx context.Context, cfg config) error {
		called = "tui"
		got = cfg
		return nil
	}
	runMCP = func(ctx context.Context, cfg config) error {
		called = "mcp"
		got = cfg
		return nil
	}
	return &called, &got
}

func TestExecuteRoutesRootToTUI(t *testing.T) {
	called, got := stubRunners(t)
	path := writeConfig(t, `{"backend": "sqlite", "title": "Chores"}`)

	var stderr bytes.Buffer
	if err := execute([]string{"--config", path}, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if *called != "tui" {
		t.Fatalf("expected root execution to launch the tui, got %q", *called)
	}
	if got.Backend != backendSQLite {
		t.Errorf("expected backend from config, got %s", got.Backend)
	}
	if got.Title != "Chores" {
		t.Errorf("expected title from config, got %s", got.Title)
	}
}

func TestExecuteFlagsOverrideConfig(t *testing.T) {
	_, got := stubRunners(t)
	path := writeConfig(t, `{"backend": "sqlite", "log_file": "from-config.log"}`)

	var stderr bytes.Buffer
	err := execute([]string{"--config", path, "--backend", "memory", "--log-file", "flag.log", "--alt-screen", "tui"}, &stderr)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if got.Backend != backendMemory {
		t.Errorf("expected backend memory, got %s", got.Backend)
	}
	if got.LogFile != "flag.log" {
		t.Errorf("expected log file flag.log, got %s", got.LogFile)
	}
	if !got.AltScreen {
		t.Error("expected alt screen from flag")
	}
}

func TestExecuteUnsetFlagsKeepConfig(t *testing.T) {
	_, got := stubRunners(t)
	path := writeConfig(t, `{"backend": "sqlite", "alt_screen": true}`)

	var stderr bytes.Buffer
	if err := execute([]string{"--config", path}, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if got.Backend != backendSQLite {
		t.Errorf("expected default flag value not to override config, got %s", got.Backend)
	}
	if !got.AltScreen {
		t.Error("expected alt screen from config")
	}
}

func TestExecuteRoutesMCP(t *testing.T) {
	called, _ := stubRunners(t)

	var stderr bytes.Buffer
	err := execute([]string{"--config", filepath.Join(t.TempDir(), "none.json"), "mcp"}, &stderr)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if *called != "mcp" {
		t.Fatalf("expected mcp runner, got %q", *called)
	}
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	called, _ := stubRunners(t)

	var stderr bytes.Buffer
	err := execute([]string{"--config", filepath.Join(t.TempDir(), "none.json"), "web"}, &stderr)
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command: web") {
		t.Fatalf("expected unknown command error, got: %v", err)
	}
	if *called != "" {
		t.Errorf("expected no runner to be invoked, got %q", *called)
	}
}

func TestExecuteRejectsUnknownBackend(t *testing.T) {
	stubRunners(t)

	var stderr bytes.Buffer
	err := execute([]string{"--config", filepath.Join(t.TempDir(), "none.json"), "--backend", "postgres"}, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown backend: postgres") {
		t.Fatalf("expected unknown backend error, got: %v", err)
	}
}

func TestExecuteHelpShowsCommandsAndFlags(t *testing.T) {
	var stderr bytes.Buffer
	err := execute([]string{"--help"}, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected help error, got: %v", err)
	}

	output := stderr.String()
	for _, want := range []string{"Running `tasklist` with no command launches the TUI.", "mcp", "-backend", "-config", "-log-file", "-alt-screen"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output, got: %s", want, output)
		}
	}
}

func TestOpenStoreBackends(t *testing.T) {
	for _, backend := range []string{backendMemory, backendSQLite} {
		t.Run(backend, func(t *testing.T) {
			storetest.Run(t, func(t *testing.T) store.TaskStore {
				s, closeStore, err := openStore(context.Background(), backend, discardLogger())
				if err != nil {
					t.Fatalf("openStore failed: %v", err)
				}
				t.Cleanup(func() { closeStore() })
				return s
			})
		})
	}
}

func TestOpenStoreSQLiteLogsChanges(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, closeStore, err := openStore(context.Background(), backendSQLite, logger)
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer closeStore()

	if _, err := s.Create(context.Background(), "log me"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.Contains(buf.String(), "task store changed") {
		t.Errorf("expected change to be logged, got %q", buf.String())
	}

	buf.Reset()
	if _, err := s.Create(context.Background(), "   "); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected blank create not to log a change, got %q", buf.String())
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasklist.log")

	logger, closeLog, err := newLogger(path)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Debug("hello", "n", 1)
	if err := closeLog(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Errorf("expected log line, got %q", string(data))
	}
}
