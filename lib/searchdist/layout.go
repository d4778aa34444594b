package searchdist

// Layout picks which dimension columns an export carries, site, period
// and the metrics are always present.
type Layout struct {
	IncludeCountry bool
	IncludeDevice  bool
}

var FullLayout = Layout{IncludeCountry: true, IncludeDevice: true}

// CompactLayout drops a dimension that was requested with a single value.
func CompactLayout(countries, devices int) Layout {
	return Layout{
		IncludeCountry: countries != 1,
		IncludeDevice:  devices != 1,
	}
}

func (l Layout) include(column string) bool {
	switch column {
	case ColumnCountry:
		return l.IncludeCountry
	case ColumnDevice:
		return l.IncludeDevice
	}
	return true
}

func (l Layout) Columns() []string {
	out := make([]string, 0, len(Columns))
	for _, c := range Columns {
		if l.include(c) {
			out = append(out, c)
		}
	}
	return out
}

// Record renders a row as cells matching Columns().
func (l Layout) Record(row MetricRow) []string {
	cells := map[string]string{
		ColumnSite:              row.Site,
		ColumnCountry:           row.Country,
		ColumnDevice:            string(row.Device),
		ColumnPeriod:            row.Period,
		ColumnTotalSearchVisits: FormatNumber(row.TotalSearchVisits),
		ColumnBrandedVisits:     FormatNumber(row.BrandedVisits),
		ColumnNonBrandedVisits:  FormatNumber(row.NonBrandedVisits),
	}

	columns := l.Columns()
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = cells[c]
	}
	return out
}
