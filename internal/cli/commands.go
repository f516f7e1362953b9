// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/instance"
	"salesdesk/internal/tui"
)

// defaultListWidth is used when stdout is not a terminal.
const defaultListWidth = 120

// Options carries the global flags and the process streams into every
// command.
type Options struct {
	ConfigDir string
	Backend   string

	Stdout   io.Writer
	Stderr   io.Writer
	ExitFunc func(int)
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.ExitFunc == nil {
		o.ExitFunc = os.Exit
	}
	return o
}

func (o Options) delegate() *Delegate {
	return &Delegate{
		ConfigDir: o.ConfigDir,
		Backend:   o.Backend,
		ExitFunc:  o.ExitFunc,
		Stderr:    o.Stderr,
	}
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, opts Options) *App {
	opts = opts.withDefaults()
	app := NewApp(version)
	app.Stderr = opts.Stderr
	app.ExitFunc = opts.ExitFunc

	app.AddCommand(&Command{
		Name:    "list",
		Summary: "Print one page of a collection",
		Usage:   listUsage,
		Run: func(args []string) error {
			return runListCommand(opts, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "demo-server",
		Summary: "Serve the bundled demo data as a sales backend",
		Usage:   demoServerUsage,
		Run: func(args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDemoServer(ctx, opts, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/port files from a crashed process",
		Usage:   "Usage: salesdesk cleanup",
		Run: func(args []string) error {
			return runCleanupCommand(opts)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: salesdesk version",
		Run: func(args []string) error {
			fmt.Fprintln(opts.Stdout, version)
			return nil
		},
	})

	RegisterReservationCommands(app.AddGroup("reservation", "Change reservations"), opts)
	RegisterPaymentCommands(app.AddGroup("payment", "Inspect payments"), opts)
	RegisterFeedCommands(app.AddGroup("feed", "Follow the change feed"), opts)

	return app
}

const listUsage = "Usage: salesdesk list <collection> [--page N] [--size N] [--search S] [--filter column=v1,v2]... [--width N]"

// runListCommand prints one page of a collection through the console's
// table renderer.
func runListCommand(opts Options, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	page := fs.Int("page", 1, "page number, starting at 1")
	size := fs.Int("size", 0, "rows per page (default: the collection's page size)")
	search := fs.String("search", "", "global search")
	filters := fs.StringArray("filter", nil, "column=value[,value] facet filter, repeatable")
	width := fs.Int("width", 0, "output width (default: terminal width)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v\n%s", err, listUsage)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one collection\n%s", listUsage)
	}
	collection := fs.Arg(0)
	if !slices.Contains(config.Collections, collection) {
		return fmt.Errorf("unknown collection %q: want one of %s", collection, strings.Join(config.Collections, ", "))
	}
	if *page < 1 {
		return errors.New("--page: must be 1 or more")
	}
	parsed, err := parseFilters(*filters)
	if err != nil {
		return err
	}

	q := backend.Query{Page: *page - 1, Size: *size, Search: *search, Filters: parsed}
	w := *width
	if w <= 0 {
		w = terminalWidth(opts.Stdout)
	}

	opts.delegate().Run(func(ctx context.Context, c *backend.Client, cfg config.Config) error {
		out, err := tui.PrintPage(ctx, cfg, c, collection, q, w)
		if err != nil {
			return err
		}
		_, err = io.WriteString(opts.Stdout, out)
		return err
	})
	return nil
}

// parseFilters turns repeated column=v1,v2 flags into query filters.
// Values for the same column accumulate.
func parseFilters(raw []string) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string][]string)
	for _, f := range raw {
		column, values, ok := strings.Cut(f, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" || values == "" {
			return nil, fmt.Errorf("--filter %q: want column=value", f)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" && !slices.Contains(out[column], v) {
				out[column] = append(out[column], v)
			}
		}
	}
	return out, nil
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultListWidth
}

// runCleanupCommand removes stale lock and port files for every role.
func runCleanupCommand(opts Options) error {
	dir := config.Dir(opts.ConfigDir)
	failed := false
	for _, role := range []instance.Role{instance.RoleConsole, instance.RoleDemo} {
		err := instance.Cleanup(dir, role)
		switch {
		case errors.Is(err, instance.ErrRunning):
			fmt.Fprintf(opts.Stderr, "A salesdesk %s is running. Stop it first.\n", role)
			failed = true
		case err != nil:
			fmt.Fprintf(opts.Stderr, "error: %s: %v\n", role, err)
			failed = true
		default:
			fmt.Fprintf(opts.Stdout, "Cleaned up %s lock and port files.\n", role)
		}
	}
	if failed {
		opts.ExitFunc(1)
	}
	return nil
}
