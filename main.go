// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"salesdesk/internal/backend"
	"salesdesk/internal/cli"
	"salesdesk/internal/config"
	"salesdesk/internal/events"
	"salesdesk/internal/instance"
	"salesdesk/internal/logging"
	"salesdesk/internal/tui"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/salesdesk)")
	backendURL := flag.String("backend", "", `backend URL, "auto" to find a running demo-server, or "demo" to start one (default: backend.url)`)

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, cli.Options{ConfigDir: *configDir, Backend: *backendURL})
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, cli.Options{ConfigDir: *configDir, Backend: *backendURL})
	if app.Execute(flag.Args()) {
		if err := runConsole(*configDir, *backendURL); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, instance.ErrNotRunning) {
				os.Exit(2)
			}
			os.Exit(1)
		}
	}
}

// newLogManager opens the rotated console log in the config directory.
func newLogManager(dir, level string) (*logging.Manager, error) {
	return logging.NewManager(logging.Config{
		FilePath:   filepath.Join(dir, "salesdesk.log"),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      level,
		BufferSize: 1000,
	})
}

// runConsole launches the interactive console and blocks until it exits.
func runConsole(configDir, backendFlag string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resolveFlag := backendFlag
	if backendFlag == cli.BackendDemo {
		resolveFlag = ""
	}
	baseURL, cfg, err := cli.ResolveBackend(ctx, configDir, resolveFlag)
	if err != nil {
		return err
	}

	dir := config.Dir(configDir)
	inst, err := instance.Acquire(dir, instance.RoleConsole)
	if err != nil {
		return err
	}
	defer inst.Release()

	logManager, err := newLogManager(dir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")

	if backendFlag == cli.BackendDemo {
		exe, err := cli.Executable()
		if err != nil {
			return err
		}
		demoURL, stopDemo, err := cli.SpawnDemo(ctx, exe, configDir, logManager.For("demo-server"))
		if err != nil {
			return err
		}
		defer stopDemo()
		baseURL = demoURL
	}
	cfg.Backend.URL = baseURL
	appLogger.Info("application starting", "version", version, "backend", baseURL)

	opts := []backend.Option{
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(logManager.For("backend")),
	}
	if token, ok := cfg.Token(); ok {
		opts = append(opts, backend.WithToken(token))
	} else {
		appLogger.Debug("no backend token set", "env", cfg.Backend.TokenEnv)
	}
	client := backend.New(baseURL, opts...)

	model := tui.NewModel(tui.Options{
		Config:   cfg,
		Source:   client,
		Logs:     logManager,
		Entries:  logManager.Entries(),
		SetLevel: logManager.SetLevel,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	feed := client.Feed(
		func(c backend.Change) {
			p.Send(events.DataChangedMsg{Collection: c.Collection, IDs: c.IDs})
		},
		func(connected bool, err error) {
			p.Send(events.FeedStatusMsg{Connected: connected, Err: err})
		},
	)
	go func() { _ = feed.Run(ctx) }()

	go func() {
		err := config.Watch(ctx, config.Path(configDir), func(c config.Config, err error) {
			// The backend stays the one resolved at startup.
			c.Backend.URL = baseURL
			p.Send(events.ConfigReloadedMsg{Config: c, Err: err})
		})
		if err != nil {
			appLogger.Warn("config watcher stopped", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		appLogger.Error("application exited with error", "error", err)
		return fmt.Errorf("running console: %w", err)
	}

	appLogger.Info("application stopped")
	return nil
}
