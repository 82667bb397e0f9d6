package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nick-dorsch/tasklist/internal/binder"
	"github.com/nick-dorsch/tasklist/internal/db"
	"github.com/nick-dorsch/tasklist/internal/dispatch"
	"github.com/nick-dorsch/tasklist/internal/mcp"
	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/internal/ui"
)

const (
	configDirName  = ".tasklist"
	backendMemory  = "memory"
	backendSQLite  = "sqlite"
	defaultBackend = backendMemory
)

type config struct {
	Backend   string `json:"backend"`
	AltScreen bool   `json:"alt_screen"`
	LogFile   string `json:"log_file"`
	Title     string `json:"title"`
}

var (
	runTUI = runTaskListTUI
	runMCP = runMCPServer
)

func main() {
	err := execute(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", filepath.Join(configDirName, "config.json"), "Path to config file")
	backend := fs.String("backend", defaultBackend, "Task store backend: memory or sqlite")
	logFile := fs.String("log-file", "", "Write debug logs to this file")
	altScreen := fs.Bool("alt-screen", false, "Run the TUI in the alternate screen buffer")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: tasklist [flags] [command]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Commands:")
		fmt.Fprintln(stderr, "  tui    Interactive task list (default)")
		fmt.Fprintln(stderr, "  mcp    Serve the task list as MCP tools over stdio")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Running `tasklist` with no command launches the TUI.")
		fmt.Fprintln(stderr, "Tasks live only as long as the process.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// explicitly set flags win over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "log-file":
			cfg.LogFile = *logFile
		case "alt-screen":
			cfg.AltScreen = *altScreen
		}
	})

	if cfg.Backend != backendMemory && cfg.Backend != backendSQLite {
		return fmt.Errorf("unknown backend: %s (want %s or %s)", cfg.Backend, backendMemory, backendSQLite)
	}

	command := "tui"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "tui":
		return runTUI(ctx, cfg)
	case "mcp":
		return runMCP(ctx, cfg)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func loadConfig(path string) (config, error) {
	cfg := config{Backend: defaultBackend}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Backend == "" {
		cfg.Backend = defaultBackend
	}

	return cfg, nil
}

// openStore returns the backing store and its close func.
func openStore(ctx context.Context, backend string, logger *slog.Logger) (store.TaskStore, func() error, error) {
	switch backend {
	case backendMemory:
		return store.NewMemory(), func() error { return nil }, nil
	case backendSQLite:
		database, err := db.Open(ctx)
		if err != nil {
			return nil, nil, err
		}
		database.SetOnChange(func(ctx context.Context) {
			logger.Debug("task store changed")
		})
		return database, database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

// newLogger writes to path when set. The TUI owns the terminal, so an empty
// path discards everything.
func newLogger(path string) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	f, err := tea.LogToFile(path, "tasklist")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), f.Close, nil
}

func runTaskListTUI(ctx context.Context, cfg config) error {
	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	backing, closeStore, err := openStore(ctx, cfg.Backend, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	d := dispatch.New(logger)
	defer d.Close()

	logger.Info("starting tui", "backend", cfg.Backend)
	b := binder.New(dispatch.NewStore(d, backing), logger)
	return ui.Run(ctx, b, ui.Options{
		Title:     cfg.Title,
		AltScreen: cfg.AltScreen,
		Logger:    logger,
	})
}

func runMCPServer(ctx context.Context, cfg config) error {
	// stdout carries the protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if cfg.LogFile != "" {
		fileLogger, closeLog, err := newLogger(cfg.LogFile)
		if err != nil {
			return err
		}
		defer closeLog()
		logger = fileLogger
	}

	backing, closeStore, err := openStore(ctx, cfg.Backend, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	d := dispatch.New(logger)
	defer d.Close()

	logger.Info("serving mcp on stdio", "backend", cfg.Backend)
	return mcp.Serve(mcp.NewServer(dispatch.NewStore(d, backing)), logger)
}
