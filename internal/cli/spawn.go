// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"salesdesk/internal/config"
	"salesdesk/internal/instance"
	"salesdesk/internal/logging"
	"salesdesk/internal/process"
)

// BackendDemo makes the console run its own demo server as a child
// process, or reuse one that is already running.
const BackendDemo = "demo"

const (
	demoReadyTimeout  = 10 * time.Second
	demoReadyInterval = 100 * time.Millisecond
	demoSimulate      = "5s"
)

// SpawnDemo returns the URL of a demo backend for the console. A demo
// server already running in the config directory is reused; otherwise
// binary is started with the demo-server command and supervised until
// stop is called. stop is never nil.
func SpawnDemo(ctx context.Context, binary, configDir string, logger *logging.ScopedLogger) (url string, stop func(), err error) {
	dir := config.Dir(configDir)
	if u, err := instance.Discover(ctx, dir, instance.RoleDemo); err == nil {
		logger.Info("reusing running demo server", "url", u)
		return u, func() {}, nil
	}

	sup := process.NewSupervisor(process.Config{
		Name:       "demo-server",
		Binary:     binary,
		Args:       []string{"--config-dir", dir, "demo-server", "--simulate", demoSimulate},
		RestartOn:  process.OnFailure,
		MaxRetries: 3,
	}, logger)
	if err := sup.Start(ctx); err != nil {
		return "", func() {}, err
	}

	readyCtx, cancel := context.WithTimeout(ctx, demoReadyTimeout)
	defer cancel()
	ticker := time.NewTicker(demoReadyInterval)
	defer ticker.Stop()
	for {
		u, err := instance.Discover(readyCtx, dir, instance.RoleDemo)
		if err == nil {
			return u, sup.Stop, nil
		}
		select {
		case <-sup.Done():
			return "", func() {}, fmt.Errorf("demo server exited with code %d", sup.LastExit())
		case <-readyCtx.Done():
			sup.Stop()
			if errors.Is(readyCtx.Err(), context.DeadlineExceeded) {
				return "", func() {}, fmt.Errorf("demo server not ready after %s: %w", demoReadyTimeout, err)
			}
			return "", func() {}, readyCtx.Err()
		case <-ticker.C:
		}
	}
}

// Executable returns the path of the running binary, for SpawnDemo.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate salesdesk binary: %w", err)
	}
	return exe, nil
}
