package inputs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultCountry is used when no country list is given.
const DefaultCountry = "us"

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SitesFromSingle wraps one site, a blank value gives no sites.
func SitesFromSingle(site string) []string {
	return clean([]string{site})
}

// SitesFromList splits newline delimited text.
func SitesFromList(text string) []string {
	return clean(strings.Split(text, "\n"))
}

// SitesFromCSV reads the first column of a header-less csv, rows may have
// any number of columns.
func SitesFromCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var sites []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read site file: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		sites = append(sites, record[0])
	}
	return clean(sites), nil
}

func SitesFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return SitesFromCSV(f)
}

// Countries splits on newlines and commas, an empty text means the
// default country.
func Countries(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{DefaultCountry}
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ','
	})
	return clean(fields)
}
