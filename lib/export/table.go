package export

import (
	"fmt"
	"io"
	"searchdist/lib/searchdist"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewTable is a rounded table that prints headers exactly as the csv
// column names.
func NewTable(w io.Writer) table.Writer {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault

	t := table.NewWriter()
	t.SetStyle(style)
	t.SetOutputMirror(w)
	return t
}

func toRow(columns []string) table.Row {
	row := make(table.Row, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	return row
}

// RenderTable prints the result table, metric columns are right aligned.
func RenderTable(w io.Writer, result searchdist.ResultTable, layout searchdist.Layout) {
	t := NewTable(w)
	columns := layout.Columns()
	t.AppendHeader(toRow(columns))

	var configs []table.ColumnConfig
	for i, c := range columns {
		switch c {
		case searchdist.ColumnTotalSearchVisits, searchdist.ColumnBrandedVisits, searchdist.ColumnNonBrandedVisits:
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.SetColumnConfigs(configs)

	for _, row := range result.Rows {
		t.AppendRow(toRow(layout.Record(row)))
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", result.Len())})
	t.Render()
}

// FailureRow is one failed combination as shown to the user.
type FailureRow struct {
	Site    string
	Country string
	Device  string
	Status  int
	Message string
}

func RenderFailures(w io.Writer, failures []FailureRow) {
	if len(failures) == 0 {
		return
	}
	t := NewTable(w)
	t.SetTitle("failed combinations")
	t.AppendHeader(table.Row{"site", "country", "device", "status", "response"})
	for _, f := range failures {
		status := "-"
		if f.Status != 0 {
			status = fmt.Sprint(f.Status)
		}
		t.AppendRow(table.Row{f.Site, f.Country, f.Device, status, f.Message})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 80},
	})
	t.Render()
}
