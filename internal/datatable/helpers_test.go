package datatable

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

type unit struct {
	ID     string
	Name   string
	Status string
	Price  int
	Paid   bool
}

func unitColumns() []Column[unit] {
	return []Column[unit]{
		{Key: "id", Header: "ID", Value: func(u unit) any { return u.ID }, Sortable: true},
		{Key: "name", Header: "Name", Value: func(u unit) any { return u.Name }, Sortable: true, Filterable: true},
		{Key: "status", Header: "Status", Value: func(u unit) any { return u.Status }, Sortable: true, Filterable: true},
		{Key: "price", Header: "Price", Value: func(u unit) any { return u.Price }, Cell: func(u unit) string { return strconv.Itoa(u.Price) }, Sortable: true},
		{Key: "paid", Header: "Paid", Value: func(u unit) any { return u.Paid }, Filterable: true},
	}
}

func unitKey(u unit) string { return u.ID }

func sampleUnits() []unit {
	return []unit{
		{ID: "A-101", Name: "Torre Norte 101", Status: "reserved", Price: 120000, Paid: true},
		{ID: "A-102", Name: "Torre Norte 102", Status: "available", Price: 98000},
		{ID: "B-201", Name: "Jardines 201", Status: "sold", Price: 143000, Paid: true},
		{ID: "B-202", Name: "jardines 202", Status: "reserved", Price: 101000},
		{ID: "C-301", Name: "Mirador 301", Status: "available", Price: 87000},
	}
}

func manyUnits(n int) []unit {
	out := make([]unit, n)
	for i := range out {
		out[i] = unit{ID: fmt.Sprintf("U-%03d", i), Name: fmt.Sprintf("Unit %d", i), Status: "available", Price: 1000 * i}
	}
	return out
}

func keysOf(rows []unit) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

// collect runs a command and flattens batches into the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
