package searchdist

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"searchdist/lib/similarweb"
	"strconv"
	"strings"
	"time"
)

// source paths inside a `data` entry, dotted paths descend into objects
const (
	pathDate              = "date"
	pathTotalSearchVisits = "total_search_visits"
	pathBrandedVisits     = "visits_distribution.branded_visits"
	pathNonBrandedVisits  = "visits_distribution.non_branded_visits"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01",
}

// Normalize flattens a fetch result into one row per `data` entry. A
// Failure, or a document without a `data` array, gives no rows.
func Normalize(result similarweb.Result, site, country string, device similarweb.Device) []MetricRow {
	success, ok := result.(similarweb.Success)
	if !ok {
		return nil
	}

	entries, ok := dataEntries(success.Raw)
	if !ok {
		slog.Debug("response has no data array", "site", site, "country", country, "device", device)
		return nil
	}

	rows := make([]MetricRow, len(entries))
	for i, entry := range entries {
		var obj map[string]any
		// a non-object entry still yields a row, with every field missing
		_ = decode(entry, &obj)

		rows[i] = MetricRow{
			Site:              site,
			Country:           country,
			Device:            device,
			Period:            period(lookup(obj, pathDate)),
			TotalSearchVisits: number(lookup(obj, pathTotalSearchVisits)),
			BrandedVisits:     number(lookup(obj, pathBrandedVisits)),
			NonBrandedVisits:  number(lookup(obj, pathNonBrandedVisits)),
		}
	}
	return rows
}

func decode(raw json.RawMessage, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}

func dataEntries(raw json.RawMessage) ([]json.RawMessage, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	data, ok := doc["data"]
	if !ok {
		return nil, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func lookup(obj map[string]any, path string) any {
	var current any = obj
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	return current
}

func number(v any) *float64 {
	var f float64
	var err error
	switch value := v.(type) {
	case json.Number:
		f, err = value.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &f
}

// period truncates any supported date to YYYY-MM, unknown forms give "".
func period(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Format("2006-01")
		}
	}
	return ""
}
