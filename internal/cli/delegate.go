// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/instance"
)

// BackendAuto makes the CLI look up a running demo server in the config
// directory instead of using a fixed URL.
const BackendAuto = "auto"

// ResolveBackend returns the backend URL to talk to and the loaded config.
// flagValue is the --backend flag: empty uses backend.url from the config,
// "auto" discovers a running demo server, anything else is used as is.
func ResolveBackend(ctx context.Context, configDir, flagValue string) (string, config.Config, error) {
	cfg, err := config.LoadFrom(config.Path(configDir))
	if err != nil {
		return "", cfg, err
	}
	switch flagValue {
	case "":
		return cfg.Backend.URL, cfg, nil
	case BackendAuto:
		u, err := instance.Discover(ctx, config.Dir(configDir), instance.RoleDemo)
		return u, cfg, err
	case BackendDemo:
		return "", cfg, errors.New(`--backend demo only starts a server for the console; use "auto" to reach it`)
	}
	return flagValue, cfg, nil
}

// Delegate resolves the backend for a CLI command and runs the command
// against it. It handles error reporting and exit codes.
type Delegate struct {
	// ConfigDir overrides the config directory.
	ConfigDir string

	// Backend is the --backend flag value.
	Backend string

	// ExitFunc is called to exit the process. Defaults to os.Exit.
	// Overridable for testing.
	ExitFunc func(int)

	// Stderr is where error messages are written. Defaults to os.Stderr.
	// Overridable for testing.
	Stderr io.Writer

	// Timeout bounds each backend request. Defaults to backend.timeout
	// from the config.
	Timeout time.Duration
}

func (d *Delegate) init() {
	if d.ExitFunc == nil {
		d.ExitFunc = os.Exit
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
}

// Client resolves the backend and returns a client for it. On failure it
// prints the error, calls ExitFunc and returns nil.
//
// Exit codes:
// - 2: --backend auto and no demo server is running
// - 1: any other error
func (d *Delegate) Client(ctx context.Context) (*backend.Client, config.Config) {
	d.init()

	baseURL, cfg, err := ResolveBackend(ctx, d.ConfigDir, d.Backend)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		if errors.Is(err, instance.ErrNotRunning) {
			d.ExitFunc(2)
		} else {
			d.ExitFunc(1)
		}
		return nil, cfg
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = cfg.Backend.Timeout
	}
	opts := []backend.Option{backend.WithTimeout(timeout)}
	if token, ok := cfg.Token(); ok {
		opts = append(opts, backend.WithToken(token))
	}
	return backend.New(baseURL, opts...), cfg
}

// Run resolves the backend and invokes fn with a client for it. A failing
// fn exits with code 1 after printing the backend's message.
func (d *Delegate) Run(fn func(ctx context.Context, c *backend.Client, cfg config.Config) error) {
	ctx := context.Background()
	client, cfg := d.Client(ctx)
	if client == nil {
		return
	}

	if err := fn(ctx, client, cfg); err != nil {
		fmt.Fprintf(d.Stderr, "error: %s\n", backend.StatusText(err))
		d.ExitFunc(1)
	}
}
