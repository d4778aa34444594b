package similarweb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRequest(device Device) FetchRequest {
	return FetchRequest{
		Site:        "example.com",
		Country:     "us",
		Device:      device,
		StartPeriod: "2023-01",
		EndPeriod:   "2023-03",
		APIKey:      "test-key",
	}
}

func TestEndpoint(t *testing.T) {
	desktop, err := Endpoint(Desktop)
	require.NoError(t, err)
	require.Equal(t, "traffic-sources/search-visits-distribution", desktop)

	mobile, err := Endpoint(Mobile)
	require.NoError(t, err)
	require.Equal(t, "mobile-traffic-sources/search-visits-distribution", mobile)

	for _, device := range []Device{"", "Desktop", "MOBILE", "mob", "both"} {
		_, err := Endpoint(device)
		require.Error(t, err, "device %q", device)
	}
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/website/example.com/mobile-traffic-sources/search-visits-distribution", r.URL.Path)

		query := r.URL.Query()
		require.Equal(t, "test-key", query.Get("api_key"))
		require.Equal(t, "2023-01", query.Get("start_date"))
		require.Equal(t, "2023-03", query.Get("end_date"))
		require.Equal(t, "us", query.Get("country"))
		require.Equal(t, "false", query.Get("main_domain_only"))
		require.Equal(t, "json", query.Get("format"))
		require.Equal(t, SourceHeaderValue, r.Header.Get(SourceHeader))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"date":"2023-01-01","total_search_visits":100}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL + "/v1/website"})
	result := client.Fetch(context.Background(), newRequest(Mobile))

	success, ok := result.(Success)
	require.True(t, ok, "expected success, got %#v", result)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(success.Raw, &doc))
	require.Len(t, doc["data"], 1)
}

func TestFetchSiteURL(t *testing.T) {
	var path atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	req := newRequest(Desktop)
	req.Site = "https://example.com/"
	result := NewClient(ClientOptions{BaseUrl: server.URL}).Fetch(context.Background(), req)
	require.IsType(t, Success{}, result)
	require.Equal(t, "/example.com/traffic-sources/search-visits-distribution", path.Load())
}

func TestFetchWithoutSourceHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get(SourceHeader))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	disabled := false
	client := NewClient(ClientOptions{BaseUrl: server.URL, SourceHeader: &disabled})
	result := client.Fetch(context.Background(), newRequest(Desktop))
	require.IsType(t, Success{}, result)
}

func TestFetchFailures(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		expectCode int
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"meta":{"status":"Error"}}`, expectCode: 403},
		{name: "not found", status: http.StatusNotFound, body: "<html><body>not found</body></html>", expectCode: 404},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", expectCode: 429},
		{name: "invalid json", status: http.StatusOK, body: "not json", expectCode: 200},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			var calls int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt64(&calls, 1)
				w.WriteHeader(test.status)
				_, _ = w.Write([]byte(test.body))
			}))
			defer server.Close()

			result := NewClient(ClientOptions{BaseUrl: server.URL}).Fetch(context.Background(), newRequest(Desktop))
			failure, ok := result.(Failure)
			require.True(t, ok, "expected failure, got %#v", result)
			require.Equal(t, test.expectCode, failure.StatusCode)
			require.Equal(t, test.body, failure.Body)
			require.EqualValues(t, 1, atomic.LoadInt64(&calls), "requests must not be retried")
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := NewClient(ClientOptions{BaseUrl: url}).Fetch(context.Background(), newRequest(Desktop))
	failure, ok := result.(Failure)
	require.True(t, ok)
	require.Equal(t, 0, failure.StatusCode)
	require.NotEmpty(t, failure.Body)
	require.Contains(t, failure.Error(), "request failed")
}

func TestFetchTransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	req := newRequest(Desktop)
	req.APIKey = "SECRET-KEY-123"
	result := NewClient(ClientOptions{BaseUrl: url}).Fetch(context.Background(), req)
	failure, ok := result.(Failure)
	require.True(t, ok)
	require.Equal(t, 0, failure.StatusCode)
	require.Contains(t, failure.Body, "search-visits-distribution")
	require.Contains(t, failure.Body, "api_key=REDACTED")
	require.NotContains(t, failure.Body, "SECRET-KEY-123")
	require.NotContains(t, failure.Summary(), "SECRET-KEY-123")
	require.NotContains(t, failure.Error(), "SECRET-KEY-123")
}

func TestFetchInvalidRequest(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer server.Close()
	client := NewClient(ClientOptions{BaseUrl: server.URL})

	badDevice := newRequest("Desktop")
	badPeriod := newRequest(Desktop)
	badPeriod.StartPeriod = "2023-04"
	noKey := newRequest(Mobile)
	noKey.APIKey = ""

	for _, req := range []FetchRequest{badDevice, badPeriod, noKey} {
		result := client.Fetch(context.Background(), req)
		require.IsType(t, Failure{}, result)
	}
	require.EqualValues(t, 0, atomic.LoadInt64(&calls))
}
