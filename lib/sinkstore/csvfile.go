package sinkstore

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"searchdist/lib/searchdist"
	"slices"
	"strings"
)

// CSVFileSink appends to `<dir>/<collection>.csv`, like a shared sheet the
// header is only written to an empty file.
type CSVFileSink struct {
	path string
}

func NewCSVFileSink(dir, collection string) (CSVFileSink, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	err := validateCollection(collection)
	if err != nil {
		return CSVFileSink{}, err
	}
	return CSVFileSink{path: filepath.Join(dir, collection+".csv")}, nil
}

func (s CSVFileSink) Path() string {
	return s.path
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	return strings.Split(strings.TrimRight(line, "\r\n"), ","), nil
}

func (s CSVFileSink) Append(_ context.Context, table searchdist.ResultTable, layout searchdist.Layout, apiKey string) error {
	header := headerFor(layout)

	info, err := os.Stat(s.path)
	exists := err == nil && info.Size() > 0
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if exists {
		current, err := readHeader(s.path)
		if err != nil {
			return fmt.Errorf("read header of %s: %w", s.path, err)
		}
		if !slices.Equal(current, header) {
			return fmt.Errorf(
				"%s has columns %s, cannot append %s",
				s.path, strings.Join(current, ","), strings.Join(header, ","),
			)
		}
	}

	err = os.MkdirAll(filepath.Dir(s.path), 0777)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if !exists {
		err = writer.Write(header)
		if err != nil {
			return err
		}
	}
	for _, row := range table.Rows {
		err = writer.Write(append(layout.Record(row), apiKey))
		if err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return f.Close()
}
