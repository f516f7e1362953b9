// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"salesdesk/internal/config"
	"salesdesk/internal/demo"
	"salesdesk/internal/instance"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

const demoServerUsage = "Usage: salesdesk demo-server [--bind 127.0.0.1] [--port 8787] [--token T] [--simulate 5s]"

// demoShutdownTimeout bounds the graceful shutdown after ctx is cancelled.
const demoShutdownTimeout = 5 * time.Second

// runDemoServer serves the fixture data until ctx is cancelled. The bound
// address is published in the config directory so "--backend auto" finds
// it.
func runDemoServer(ctx context.Context, opts Options, args []string) error {
	fs := flag.NewFlagSet("demo-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bind := fs.String("bind", "127.0.0.1", "address to listen on")
	port := fs.Int("port", 0, "port to listen on (0 picks a free port)")
	token := fs.String("token", "", "bearer token to require (default: $backend.token_env)")
	simulate := fs.Duration("simulate", 0, "advance a reservation every interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v\n%s", err, demoServerUsage)
	}

	cfg, err := config.LoadFrom(config.Path(opts.ConfigDir))
	if err != nil {
		fmt.Fprintf(opts.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if *token == "" {
		*token, _ = cfg.Token()
	}

	dir := config.Dir(opts.ConfigDir)
	inst, err := instance.Acquire(dir, instance.RoleDemo)
	if err != nil {
		return err
	}
	defer inst.Release()

	logManager, err := logging.NewManager(logging.Config{
		FilePath:   filepath.Join(dir, "demo.log"),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	echoed := make(chan struct{})
	go func() {
		defer close(echoed)
		echoLogs(logManager.Entries(), opts.Stderr)
	}()
	defer func() {
		_ = logManager.Close()
		<-echoed
	}()

	fixtures, err := records.LoadFixtures()
	if err != nil {
		return err
	}
	srv := demo.New(demo.Config{Bind: *bind, Port: *port, Token: *token}, demo.NewStore(fixtures), logManager)
	ln, err := srv.Listen()
	if err != nil {
		return err
	}
	if err := inst.Publish(srv.Addr()); err != nil {
		return err
	}
	fmt.Fprintf(opts.Stdout, "demo backend listening on http://%s\n", srv.Addr())

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	if *simulate > 0 {
		go srv.Simulate(ctx, *simulate)
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), demoShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// echoLogs copies log entries to w until the stream closes.
func echoLogs(entries <-chan logging.LogEntry, w io.Writer) {
	for e := range entries {
		fmt.Fprintln(w, e.String())
	}
}
