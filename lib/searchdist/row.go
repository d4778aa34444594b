package searchdist

import (
	"searchdist/lib/similarweb"
	"strconv"
)

// MetricRow is one month of search visits for a (site, country, device).
// A nil metric means the API did not report it.
type MetricRow struct {
	Site              string
	Country           string
	Device            similarweb.Device
	Period            string
	TotalSearchVisits *float64
	BrandedVisits     *float64
	NonBrandedVisits  *float64
}

// ResultTable keeps rows in the order they were produced, it never
// deduplicates.
type ResultTable struct {
	Rows []MetricRow
}

func (t *ResultTable) Append(rows ...MetricRow) {
	t.Rows = append(t.Rows, rows...)
}

func (t ResultTable) Len() int {
	return len(t.Rows)
}

func (t ResultTable) Empty() bool {
	return len(t.Rows) == 0
}

const (
	ColumnSite              = "site"
	ColumnCountry           = "country"
	ColumnDevice            = "device"
	ColumnPeriod            = "period"
	ColumnTotalSearchVisits = "total_search_visits"
	ColumnBrandedVisits     = "branded_visits"
	ColumnNonBrandedVisits  = "non_branded_visits"
)

// Columns is the full header of an exported table, in order.
var Columns = []string{
	ColumnSite,
	ColumnCountry,
	ColumnDevice,
	ColumnPeriod,
	ColumnTotalSearchVisits,
	ColumnBrandedVisits,
	ColumnNonBrandedVisits,
}

// FormatNumber renders a metric, nil renders as an empty cell.
func FormatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
