package sinkstore

import (
	"context"
	"fmt"
	"regexp"
	"searchdist/lib/searchdist"
)

// DefaultCollection is the name rows are appended under.
const DefaultCollection = "search_distribution"

// ColumnAPIKey is appended after the table columns in every sink.
const ColumnAPIKey = "api_key"

// Sink receives a finished table, it only ever appends.
type Sink interface {
	Append(ctx context.Context, table searchdist.ResultTable, layout searchdist.Layout, apiKey string) error
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

func validateCollection(name string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}

func headerFor(layout searchdist.Layout) []string {
	return append(layout.Columns(), ColumnAPIKey)
}
