package searchdist

import (
	"encoding/json"
	"searchdist/lib/similarweb"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func success(raw string) similarweb.Result {
	return similarweb.Success{Raw: json.RawMessage(raw)}
}

const threeMonths = `{
	"meta": {"request": {"domain": "example.com"}, "status": "Success"},
	"data": [
		{
			"date": "2023-01-01",
			"total_search_visits": 100,
			"visits_distribution": {"branded_visits": 60, "non_branded_visits": 40},
			"unexpected": "ignored"
		},
		{
			"date": "2023-02-01",
			"total_search_visits": 110
		},
		{
			"date": "2023-03-01",
			"total_search_visits": 120,
			"visits_distribution": {"branded_visits": 70.5, "non_branded_visits": 49.5}
		}
	]
}`

func TestNormalizeScenario(t *testing.T) {
	rows := Normalize(success(threeMonths), "example.com", "us", similarweb.Desktop)

	expected := []MetricRow{
		{
			Site: "example.com", Country: "us", Device: similarweb.Desktop, Period: "2023-01",
			TotalSearchVisits: ptr(100), BrandedVisits: ptr(60), NonBrandedVisits: ptr(40),
		},
		{
			Site: "example.com", Country: "us", Device: similarweb.Desktop, Period: "2023-02",
			TotalSearchVisits: ptr(110),
		},
		{
			Site: "example.com", Country: "us", Device: similarweb.Desktop, Period: "2023-03",
			TotalSearchVisits: ptr(120), BrandedVisits: ptr(70.5), NonBrandedVisits: ptr(49.5),
		},
	}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}

	again := Normalize(success(threeMonths), "example.com", "us", similarweb.Desktop)
	require.Equal(t, rows, again)
}

func TestNormalizeEmpty(t *testing.T) {
	testCases := []struct {
		name   string
		result similarweb.Result
	}{
		{name: "failure", result: similarweb.Failure{StatusCode: 403, Body: "forbidden"}},
		{name: "missing data", result: success(`{"meta": {}}`)},
		{name: "empty data", result: success(`{"data": []}`)},
		{name: "null data", result: success(`{"data": null}`)},
		{name: "data is object", result: success(`{"data": {"date": "2023-01-01"}}`)},
		{name: "document is array", result: success(`[1, 2, 3]`)},
		{name: "nil result", result: nil},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			rows := Normalize(test.result, "example.com", "us", similarweb.Mobile)
			require.Empty(t, rows)
		})
	}
}

func TestNormalizeRowCount(t *testing.T) {
	rows := Normalize(success(`{"data": [
		{"date": "2023-01-15"},
		"not an object",
		{"date": "garbage", "total_search_visits": "12"},
		{"date": "2023-01-20", "total_search_visits": null},
		{"date": "2023-02-01T00:00:00Z", "total_search_visits": true}
	]}`), "a.com", "gb", similarweb.Mobile)

	require.Len(t, rows, 5)

	require.Equal(t, "2023-01", rows[0].Period)
	require.Nil(t, rows[0].TotalSearchVisits)

	require.Equal(t, "", rows[1].Period)
	require.Equal(t, "a.com", rows[1].Site)

	require.Equal(t, "", rows[2].Period)
	require.Equal(t, 12.0, *rows[2].TotalSearchVisits)

	// two entries in the same month are both kept
	require.Equal(t, "2023-01", rows[3].Period)
	require.Nil(t, rows[3].TotalSearchVisits)

	require.Equal(t, "2023-02", rows[4].Period)
	require.Nil(t, rows[4].TotalSearchVisits)

	for _, row := range rows {
		require.Equal(t, "gb", row.Country)
		require.Equal(t, similarweb.Mobile, row.Device)
	}
}

func TestLayout(t *testing.T) {
	require.Equal(t, []string{
		"site", "country", "device", "period",
		"total_search_visits", "branded_visits", "non_branded_visits",
	}, FullLayout.Columns())

	require.Equal(t, []string{
		"site", "period", "total_search_visits", "branded_visits", "non_branded_visits",
	}, CompactLayout(1, 1).Columns())

	require.Equal(t, []string{
		"site", "country", "period", "total_search_visits", "branded_visits", "non_branded_visits",
	}, CompactLayout(2, 1).Columns())

	row := MetricRow{
		Site: "example.com", Country: "us", Device: similarweb.Desktop, Period: "2023-02",
		TotalSearchVisits: ptr(110),
	}
	require.Equal(t, []string{"example.com", "us", "desktop", "2023-02", "110", "", ""}, FullLayout.Record(row))
	require.Equal(t, []string{"example.com", "desktop", "2023-02", "110", "", ""}, CompactLayout(1, 2).Record(row))
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "", FormatNumber(nil))
	require.Equal(t, "100", FormatNumber(ptr(100)))
	require.Equal(t, "12.5", FormatNumber(ptr(12.5)))
	require.Equal(t, "1234567", FormatNumber(ptr(1234567)))
}
