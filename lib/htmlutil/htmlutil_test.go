package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		max      int
		expected string
	}{
		{
			name:     "json",
			body:     "{\"meta\": {\"status\": \"Error\",\n  \"error_message\": \"Data not found\"}}",
			expected: `{"meta": {"status": "Error", "error_message": "Data not found"}}`,
		},
		{
			name: "html",
			body: `<!DOCTYPE html>
<html>
<head><title>403 Forbidden</title><style>body { color: red; }</style></head>
<body>
	<h1>Forbidden</h1>
	<script>console.log("hidden")</script>
	<p>You don't have permission.</p>
</body>
</html>`,
			expected: "403 Forbidden Forbidden You don't have permission.",
		},
		{
			name:     "truncated",
			body:     strings.Repeat("a", 20),
			max:      5,
			expected: "aaaaa...",
		},
		{
			name:     "empty",
			body:     "  \n ",
			expected: "",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, Summarize(test.body, test.max))
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	require.True(t, LooksLikeHTML("  <html><body>x</body></html>"))
	require.True(t, LooksLikeHTML("<!doctype html><p>x"))
	require.False(t, LooksLikeHTML(`{"data": []}`))
}
