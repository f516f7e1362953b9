// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
)

// TailConfig configures how the change feed is printed.
type TailConfig struct {
	JSON      bool
	Writer    io.Writer
	ErrWriter io.Writer
	// Now stamps each line. Defaults to time.Now.
	Now func() time.Time
}

// TailFeed prints every change the backend announces until ctx is
// cancelled. Connection state changes go to ErrWriter; the feed reconnects
// on its own, so TailFeed returns nil on a clean exit.
func TailFeed(ctx context.Context, client *backend.Client, cfg TailConfig) error {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	enc := json.NewEncoder(cfg.Writer)

	feed := client.Feed(
		func(c backend.Change) {
			if cfg.JSON {
				_ = enc.Encode(c)
				return
			}
			_, _ = fmt.Fprintln(cfg.Writer, formatChange(cfg.Now(), c))
		},
		func(connected bool, err error) {
			switch {
			case connected:
				_, _ = fmt.Fprintln(cfg.ErrWriter, "Connected.")
			case err != nil:
				_, _ = fmt.Fprintf(cfg.ErrWriter, "Disconnected: %s\n", backend.StatusText(err))
			}
		},
	)
	if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func formatChange(at time.Time, c backend.Change) string {
	ids := "all"
	if len(c.IDs) > 0 {
		ids = strings.Join(c.IDs, ",")
	}
	return fmt.Sprintf("%s  %-12s  %s", at.Format("15:04:05"), c.Collection, ids)
}

// RegisterFeedCommands registers the feed command group.
func RegisterFeedCommands(group *Group, opts Options) {
	const usage = "Usage: salesdesk feed tail [--json]"
	group.AddCommand(&Command{
		Name:    "tail",
		Summary: "Print changes as the backend announces them",
		Usage:   usage,
		Run: func(args []string) error {
			fs := flag.NewFlagSet("feed tail", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			asJSON := fs.Bool("json", false, "print one JSON object per change")
			if err := fs.Parse(args); err != nil {
				return fmt.Errorf("%v\n%s", err, usage)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts.delegate().Run(func(_ context.Context, c *backend.Client, _ config.Config) error {
				return TailFeed(ctx, c, TailConfig{
					JSON:      *asJSON,
					Writer:    opts.Stdout,
					ErrWriter: opts.Stderr,
				})
			})
			return nil
		},
	})
}
