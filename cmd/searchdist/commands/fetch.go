package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"searchdist/internal/pipeline"
	"searchdist/lib/export"
	"searchdist/lib/inputs"
	"searchdist/lib/restyutil"
	"searchdist/lib/schedule"
	"searchdist/lib/searchdist"
	"searchdist/lib/similarweb"
	"searchdist/lib/sinkstore"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type fetchOptions struct {
	sites          []string
	sitesList      string
	sitesFile      string
	countries      []string
	device         string
	start          string
	end            string
	out            string
	compact        bool
	noSourceHeader bool
	concurrency    int
	timeout        time.Duration
	sinkDriver     string
	sinkDsn        string
	collection     string
	csvSinkDir     string
	mailTo         []string
	dumpHttp       string
	cron           string
}

var fetchOpts fetchOptions

func init() {
	flags := fetchCmd.Flags()
	flags.StringArrayVar(&fetchOpts.sites, "site", nil, "A site to fetch, can be repeated.")
	flags.StringVar(&fetchOpts.sitesList, "sites-list", "", "A file with one site per line.")
	flags.StringVar(&fetchOpts.sitesFile, "sites-file", "", "A header-less csv file whose first column holds sites.")
	flags.StringArrayVar(&fetchOpts.countries, "country", nil, "Country codes, comma separated or repeated. (default us)")
	flags.StringVar(&fetchOpts.device, "device", string(similarweb.SelectBoth), "desktop, mobile or both.")
	flags.StringVar(&fetchOpts.start, "start", "2023-01", "The first month to fetch. (YYYY-MM)")
	flags.StringVar(&fetchOpts.end, "end", "2023-03", "The last month to fetch. (YYYY-MM)")
	flags.StringVar(&fetchOpts.out, "out", export.FileName, "The csv file to write, empty to skip.")
	flags.BoolVar(&fetchOpts.compact, "compact", false, "Omit the country and device columns when only one was requested.")
	flags.BoolVar(&fetchOpts.noSourceHeader, "no-source-header", false, "Do not send the client identification header.")
	flags.IntVar(&fetchOpts.concurrency, "concurrency", 0, "The number of requests in flight, 1 or less is sequential.")
	flags.DurationVar(&fetchOpts.timeout, "timeout", 0, "The timeout of a single request, 0 keeps the transport default.")
	flags.StringVar(&fetchOpts.sinkDriver, "sink-driver", "", "The sink database driver: sqlite, libsql or postgres.")
	flags.StringVar(&fetchOpts.sinkDsn, "sink-dsn", "", "The sink database to append rows to.")
	flags.StringVar(&fetchOpts.collection, "collection", "", fmt.Sprintf("The sink collection name. (default %s)", sinkstore.DefaultCollection))
	flags.StringVar(&fetchOpts.csvSinkDir, "csv-sink-dir", "", "A directory holding an append-only csv per collection.")
	flags.StringArrayVar(&fetchOpts.mailTo, "mail-to", nil, "Email the csv to this address, can be repeated.")
	flags.StringVar(&fetchOpts.dumpHttp, "dump-http", "", "Dump every HTTP message into this directory.")
	flags.StringVar(&fetchOpts.cron, "cron", "", "Keep running and fetch on this cron schedule, ex. \"0 6 2 * *\".")
	rootCmd.AddCommand(fetchCmd)
}

func (o fetchOptions) readSites() ([]string, error) {
	var sites []string
	for _, site := range o.sites {
		sites = append(sites, inputs.SitesFromSingle(site)...)
	}
	if o.sitesList != "" {
		content, err := os.ReadFile(o.sitesList)
		if err != nil {
			return nil, fmt.Errorf("read sites list: %w", err)
		}
		sites = append(sites, inputs.SitesFromList(string(content))...)
	}
	if o.sitesFile != "" {
		fromFile, err := inputs.SitesFromFile(o.sitesFile)
		if err != nil {
			return nil, err
		}
		sites = append(sites, fromFile...)
	}
	return sites, nil
}

// runConfig merges flags over the config file, flags always win.
func (o fetchOptions) runConfig(cfg Config) (pipeline.RunConfig, error) {
	sites, err := o.readSites()
	if err != nil {
		return pipeline.RunConfig{}, err
	}

	countries := o.countries
	if len(countries) == 0 {
		countries = cfg.Countries
	}

	var selection similarweb.Selection
	if strings.TrimSpace(o.device) != "" {
		selection, err = similarweb.ParseSelection(strings.TrimSpace(o.device))
		if err != nil {
			return pipeline.RunConfig{}, err
		}
	}

	concurrency := o.concurrency
	if concurrency == 0 {
		concurrency = cfg.Concurrency
	}

	return pipeline.RunConfig{
		APIKey:      cfg.ApiKey,
		Sites:       sites,
		Countries:   inputs.Countries(strings.Join(countries, ",")),
		Selection:   selection,
		StartPeriod: o.start,
		EndPeriod:   o.end,
		Concurrency: concurrency,
	}, nil
}

func (o fetchOptions) clientOptions(cfg Config) (similarweb.ClientOptions, error) {
	opts := similarweb.ClientOptions{
		BaseUrl:      cfg.BaseUrl,
		SourceHeader: cfg.SourceHeader,
	}
	if cfg.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if o.timeout > 0 {
		opts.Timeout = o.timeout
	}
	if o.noSourceHeader {
		disabled := false
		opts.SourceHeader = &disabled
	}
	if o.dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(o.dumpHttp)
		if err != nil {
			return similarweb.ClientOptions{}, err
		}
		opts.InstrumentOutput = output
	}
	return opts, nil
}

func (o fetchOptions) sinkConfig(cfg Config) SinkConfig {
	sink := cfg.Sink
	if o.sinkDriver != "" {
		sink.Driver = o.sinkDriver
	}
	if o.sinkDsn != "" {
		sink.Dsn = o.sinkDsn
	}
	if o.collection != "" {
		sink.Collection = o.collection
	}
	if o.csvSinkDir != "" {
		sink.CsvDir = o.csvSinkDir
	}
	return sink
}

func (o fetchOptions) layout(run pipeline.RunConfig) searchdist.Layout {
	if !o.compact {
		return searchdist.FullLayout
	}
	return searchdist.CompactLayout(len(run.Countries), len(run.Selection.Devices()))
}

func failureRows(report pipeline.Report) []export.FailureRow {
	rows := make([]export.FailureRow, len(report.Failures))
	for i, f := range report.Failures {
		rows[i] = export.FailureRow{
			Site:    f.Site,
			Country: f.Country,
			Device:  string(f.Device),
			Status:  f.Failure.StatusCode,
			Message: f.Failure.Summary(),
		}
	}
	return rows
}

func writeCSVFile(path string, table searchdist.ResultTable, layout searchdist.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	err = export.WriteCSV(f, table, layout)
	if err != nil {
		return err
	}
	return f.Close()
}

// fetch performs one complete run and delivers the table to every
// configured output.
func (o fetchOptions) fetch(ctx context.Context, cmd *cobra.Command, cfg Config) error {
	run, err := o.runConfig(cfg)
	if err != nil {
		return err
	}
	clientOpts, err := o.clientOptions(cfg)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx, similarweb.NewClient(clientOpts), run)
	if err != nil {
		return err
	}

	layout := o.layout(run.Normalized())
	out := cmd.OutOrStdout()

	export.RenderFailures(out, failureRows(report))
	if report.Warnings() > 0 {
		slog.Warn(
			"some combinations could not be fetched",
			"run_id", report.RunID,
			"failed", report.Warnings(),
			"attempts", report.Attempts,
		)
	}
	if errors.Is(report.Err(), pipeline.ErrNoData) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no data was retrieved, check the sites, countries and api key")
		return report.Err()
	}
	export.RenderTable(out, report.Table, layout)

	if o.out != "" {
		err = writeCSVFile(o.out, report.Table, layout)
		if err != nil {
			return fmt.Errorf("write %s: %w", o.out, err)
		}
		slog.Info("wrote csv", "file", o.out, "rows", report.Table.Len())
	}

	sinks, closeSinks, err := o.sinkConfig(cfg).sinks()
	if err != nil {
		return err
	}
	defer closeSinks()
	for _, sink := range sinks {
		err = sink.Append(ctx, report.Table, layout, run.APIKey)
		if err != nil {
			return fmt.Errorf("append to sink: %w", err)
		}
	}

	if len(o.mailTo) > 0 {
		if !cfg.Smtp.Configured() {
			return fmt.Errorf("--mail-to was given but smtp is not configured in %s", ConfigFile)
		}
		period := fmt.Sprintf("%s to %s", run.StartPeriod, run.EndPeriod)
		err = export.NewMailer(cfg.Smtp).Send(o.mailTo, report.Table, layout, period)
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		slog.Info("sent csv", "to", strings.Join(o.mailTo, ", "))
	}

	return nil
}

// scheduled repeats fetch on a cron spec until ctx is done, a failed run
// is logged and the next one still happens.
func (o fetchOptions) scheduled(ctx context.Context, cmd *cobra.Command, cfg Config) error {
	next, err := schedule.NextRuns(o.cron, time.Now(), 1)
	if err != nil {
		return err
	}

	scheduler := schedule.New(time.Local)
	err = scheduler.Add(o.cron, func() {
		err := o.fetch(ctx, cmd, cfg)
		if err != nil {
			slog.Error("scheduled fetch failed", "err", err)
			return
		}
		upcoming, _ := schedule.NextRuns(o.cron, time.Now(), 1)
		if len(upcoming) > 0 {
			slog.Info("scheduled fetch finished", "next", upcoming[0])
		}
	})
	if err != nil {
		return err
	}

	if len(next) > 0 {
		slog.Info("waiting for schedule", "cron", o.cron, "next", next[0])
	}
	scheduler.Run(ctx)
	return nil
}

var fetchCmd = &cobra.Command{
	Use:   "fetch --site <site> [--country <code>] [--device desktop|mobile|both]",
	Short: "Fetches the search visits distribution of every site, country and device.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if fetchOpts.cron != "" {
			return fetchOpts.scheduled(cmd.Context(), cmd, cfg)
		}
		return fetchOpts.fetch(cmd.Context(), cmd, cfg)
	},
}
