package inputs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSitesFromList(t *testing.T) {
	require.Equal(t, []string{"a.com", "b.com"}, SitesFromList("a.com\n\n  b.com \r\n \n"))
	require.Empty(t, SitesFromList(""))
	require.Empty(t, SitesFromSingle("   "))
	require.Equal(t, []string{"a.com"}, SitesFromSingle(" a.com"))
}

func TestSitesFromCSV(t *testing.T) {
	sites, err := SitesFromCSV(strings.NewReader("a.com\nb.com,extra\n\n\"c.com \"\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a.com", "b.com", "c.com"}, sites)

	_, err = SitesFromCSV(strings.NewReader("\"unterminated\n"))
	require.Error(t, err)
}

func TestSitesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.csv")
	require.NoError(t, os.WriteFile(path, []byte("example.com\nexample.org\n"), 0600))

	sites, err := SitesFromFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"example.com", "example.org"}, sites)

	_, err = SitesFromFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestCountries(t *testing.T) {
	require.Equal(t, []string{"us"}, Countries(""))
	require.Equal(t, []string{"us"}, Countries(" \n"))
	require.Equal(t, []string{"us", "gb", "de"}, Countries("us\ngb, de\n"))
}
