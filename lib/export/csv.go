package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"searchdist/lib/searchdist"
)

// FileName is the default name of a downloaded export.
const FileName = "similarweb_data.csv"

// WriteCSV writes the header for `layout` followed by every row.
func WriteCSV(w io.Writer, table searchdist.ResultTable, layout searchdist.Layout) error {
	writer := csv.NewWriter(w)
	err := writer.Write(layout.Columns())
	if err != nil {
		return err
	}
	for _, row := range table.Rows {
		err = writer.Write(layout.Record(row))
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func EncodeCSV(table searchdist.ResultTable, layout searchdist.Layout) ([]byte, error) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, table, layout)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
