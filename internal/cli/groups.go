// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/records"
)

// RegisterReservationCommands registers the reservation command group.
func RegisterReservationCommands(group *Group, opts Options) {
	const usage = "Usage: salesdesk reservation set-status <id> <active|expiring|converted|cancelled>"
	group.AddCommand(&Command{
		Name:    "set-status",
		Summary: "Change a reservation's status",
		Usage:   usage,
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("%s", strings.TrimPrefix(usage, "Usage: "))
			}
			id := args[0]
			status, err := parseReservationStatus(args[1])
			if err != nil {
				return err
			}
			opts.delegate().Run(func(ctx context.Context, c *backend.Client, _ config.Config) error {
				r, err := c.SetReservationStatus(ctx, id, status)
				if err != nil {
					return err
				}
				fmt.Fprintf(opts.Stdout, "%s marked %s\n", r.ID, r.Status)
				return nil
			})
			return nil
		},
	})
}

func parseReservationStatus(s string) (records.ReservationStatus, error) {
	var values []string
	for _, o := range records.ReservationStatuses() {
		values = append(values, o.Value)
	}
	v := strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(values, v) {
		return "", fmt.Errorf("unknown status %q: want one of %s", s, strings.Join(values, ", "))
	}
	return records.ReservationStatus(v), nil
}

// RegisterPaymentCommands registers the payment command group.
func RegisterPaymentCommands(group *Group, opts Options) {
	const usage = "Usage: salesdesk payment history <id>"
	group.AddCommand(&Command{
		Name:    "history",
		Summary: "Print a payment's history, oldest first",
		Usage:   usage,
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%s", strings.TrimPrefix(usage, "Usage: "))
			}
			id := args[0]
			opts.delegate().Run(func(ctx context.Context, c *backend.Client, _ config.Config) error {
				events, err := c.PaymentHistory(ctx, id)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintf(opts.Stdout, "%s has no history.\n", id)
					return nil
				}
				for _, e := range events {
					fmt.Fprintln(opts.Stdout, formatPaymentEvent(e))
				}
				return nil
			})
			return nil
		},
	})
}

func formatPaymentEvent(e records.PaymentEvent) string {
	line := fmt.Sprintf("%s  %-10s", e.At.Format("2006-01-02 15:04"), e.Status)
	if e.Note != "" {
		line += "  " + e.Note
	}
	return strings.TrimRight(line, " ")
}
