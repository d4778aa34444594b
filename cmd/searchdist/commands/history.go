package commands

import (
	"fmt"
	"searchdist/lib/export"
	"searchdist/lib/searchdist"
	"searchdist/lib/sinkstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int
var historySink SinkConfig

func init() {
	flags := historyCmd.Flags()
	flags.IntVar(&historyLimit, "limit", 50, "The number of rows to show, newest first.")
	flags.StringVar(&historySink.Driver, "sink-driver", "", "The sink database driver: sqlite, libsql or postgres.")
	flags.StringVar(&historySink.Dsn, "sink-dsn", "", "The sink database to read from.")
	flags.StringVar(&historySink.Collection, "collection", "", "The sink collection name.")
	rootCmd.AddCommand(historyCmd)
}

// maskKey keeps only the last 4 characters of an api key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Lists the rows most recently appended to the sink database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sink := cfg.Sink
		if historySink.Driver != "" {
			sink.Driver = historySink.Driver
		}
		if historySink.Dsn != "" {
			sink.Dsn = historySink.Dsn
		}
		if historySink.Collection != "" {
			sink.Collection = historySink.Collection
		}
		store, err := sink.open()
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		t := export.NewTable(cmd.OutOrStdout())
		header := table.Row{"id"}
		for _, c := range searchdist.Columns {
			header = append(header, c)
		}
		header = append(header, sinkstore.ColumnAPIKey)
		t.AppendHeader(header)
		for _, stored := range rows {
			row := table.Row{stored.ID}
			for _, cell := range searchdist.FullLayout.Record(stored.Row) {
				row = append(row, cell)
			}
			row = append(row, maskKey(stored.APIKey))
			t.AppendRow(row)
		}
		t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(rows))})
		t.Render()
		return nil
	},
}
