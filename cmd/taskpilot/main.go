package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tgienger/taskpilot/internal/config"
	"github.com/tgienger/taskpilot/internal/notify"
	"github.com/tgienger/taskpilot/internal/store"
	"github.com/tgienger/taskpilot/internal/storage"
	"github.com/tgienger/taskpilot/internal/ui"
	"github.com/tgienger/taskpilot/internal/viewmodel"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskpilot %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting",
		zap.String("version", version),
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir))

	var backend storage.Store
	switch cfg.Backend {
	case "sqlite":
		backend, err = storage.NewSQLiteStore(filepath.Join(cfg.DataDir, "taskpilot.db"))
	default:
		backend, err = storage.NewFileStore(cfg.DataDir)
	}
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	gateway := storage.NewGateway(backend, log)
	defer gateway.Close()

	debounce := store.WithDebounce(cfg.Debounce())
	projects := store.NewProjectStore(gateway, log, debounce)
	tasks := store.NewTaskStore(gateway, log, debounce)
	users := store.NewUserStore(gateway, log, debounce)
	defer func() {
		projects.Close()
		tasks.Close()
		users.Close()
	}()

	notifier := notify.NewLogNotifier(log, cfg.NotificationsGranted)

	projectView := viewmodel.NewProjectView(projects, tasks)
	taskView := viewmodel.NewTaskView(tasks)
	profileView := viewmodel.NewProfileView(users, notifier)

	sweep := notify.NewSweep(cfg.ReminderCron, tasks, projects, notifier, log)
	if err := sweep.Start(); err != nil {
		return fmt.Errorf("start reminder sweep: %w", err)
	}
	defer sweep.Stop()

	app := ui.NewApp(projectView, taskView, profileView)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}

// newLogger writes to a file in the data directory so log output never
// fights the terminal UI for the screen.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{filepath.Join(cfg.DataDir, "taskpilot.log")}
	zcfg.ErrorOutputPaths = zcfg.OutputPaths
	return zcfg.Build()
}
