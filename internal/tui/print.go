package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"salesdesk/internal/backend"
	"salesdesk/internal/config"
	"salesdesk/internal/datatable"
)

// printer renders one fetched page as plain text.
type printer interface {
	printPage(ctx context.Context, q backend.Query, width int) (string, error)
}

// PrintPage fetches one page of collection and renders it with the same
// columns the console shows, without colors. It is what the list command
// prints.
func PrintPage(ctx context.Context, cfg config.Config, src Source, collection string, q backend.Query, width int) (string, error) {
	if !slices.Contains(config.Collections, collection) {
		return "", fmt.Errorf("unknown collection %q: want one of %s", collection, strings.Join(config.Collections, ", "))
	}
	styles := NewStyles(cfg.Theme)
	e := &env{
		cfg:     cfg,
		source:  src,
		styles:  styles,
		md:      newMarkdown(styles.MarkdownStyle()),
		logs:    nopProvider{},
		timeout: cfg.Backend.Timeout,
	}

	var p printer
	switch collection {
	case backend.Reservations:
		p = e.reservationsPane()
	case backend.Contracts:
		p = e.contractsPane()
	case backend.Payments:
		p = e.paymentsPane()
	case backend.Credit:
		p = e.creditPane()
	}
	if q.Size <= 0 {
		q.Size = cfg.Collection(collection).PageSize
	}
	return p.printPage(ctx, q, width)
}

func (p *pane[T]) printPage(ctx context.Context, q backend.Query, width int) (string, error) {
	page, err := p.load(ctx, q)
	if err != nil {
		return "", err
	}
	p.table.SetServer(datatable.ServerPagination{
		PageIndex: page.PageIndex,
		PageSize:  page.PageSize,
		PageCount: page.PageCount,
		Total:     page.Total,
	})
	_ = p.table.SetRows(page.Items)
	p.table.SetSize(width, len(page.Items)+8)

	lines := strings.Split(ansi.Strip(p.table.View()), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n", nil
}
