package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tally/internal/inventory"
)

// column describes one rendered table column. Numeric columns are
// right-aligned, the convention for id and capacity values.
type column struct {
	Title   string
	Numeric bool
}

func renderTable(w io.Writer, columns []column, rows [][]string) {
	if len(columns) == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.Title
		align := text.AlignLeft
		if col.Numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	fmt.Fprintln(w, tw.Render())
}

// itemColumns is the shared item listing layout: short id first (what the
// operator reads off a label), colored status, dash for an absent
// destination.
var itemColumns = []column{
	{Title: "Short ID"},
	{Title: "Definition"},
	{Title: "Warehouse"},
	{Title: "Status"},
	{Title: "Destination"},
	{Title: "Updated"},
}

func renderItemTable(w io.Writer, items []inventory.Item, colorize bool) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ShortID,
			refName(item.ItemDefinition),
			refName(item.Warehouse),
			renderStatus(item.Status, colorize),
			orDash(item.CurrentDestination),
			formatLocalTime(item.LastUpdated),
		})
	}
	renderTable(w, itemColumns, rows)
}
