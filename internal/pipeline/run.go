package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"searchdist/lib/searchdist"
	"searchdist/lib/similarweb"
	"searchdist/lib/telemetry"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var tracer = telemetry.Tracer("searchdist.internal.pipeline")
var meter = telemetry.Meter("searchdist.internal.pipeline")

var attemptCounter, _ = meter.Int64Counter("searchdist.fetch.attempts")
var failureCounter, _ = meter.Int64Counter("searchdist.fetch.failures")
var rowCounter, _ = meter.Int64Counter("searchdist.rows")

// ErrNoData means the run finished but not a single row came back.
var ErrNoData = errors.New("no data was retrieved")

type Fetcher interface {
	Fetch(ctx context.Context, req similarweb.FetchRequest) similarweb.Result
}

type FetcherFunc func(ctx context.Context, req similarweb.FetchRequest) similarweb.Result

func (f FetcherFunc) Fetch(ctx context.Context, req similarweb.FetchRequest) similarweb.Result {
	return f(ctx, req)
}

type CombinationFailure struct {
	Combination
	Failure similarweb.Failure
}

type Report struct {
	RunID    string
	Table    searchdist.ResultTable
	Attempts int
	Failures []CombinationFailure
	Elapsed  time.Duration
}

// Warnings is the number of combinations that failed.
func (r Report) Warnings() int {
	return len(r.Failures)
}

// Err is ErrNoData when nothing was retrieved, a run with some failures
// and some rows is still a success.
func (r Report) Err() error {
	if r.Table.Empty() {
		return ErrNoData
	}
	return nil
}

type outcome struct {
	rows    []searchdist.MetricRow
	failure *similarweb.Failure
}

func newRunID() string {
	id, err := random.String(8)
	if err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return id
}

// Run fetches and normalizes every combination of the config. It refuses
// to start on invalid input, after that it always runs to completion and
// individual failures are only recorded in the report. Rows come out in
// combination order regardless of Concurrency.
func Run(ctx context.Context, fetcher Fetcher, cfg RunConfig) (Report, error) {
	cfg = cfg.Normalized()
	err := cfg.Validate()
	if err != nil {
		return Report{}, err
	}

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	start := time.Now()
	report := Report{RunID: newRunID()}
	log := slog.With("run_id", report.RunID)

	combos := cfg.Combinations()
	span.SetAttributes(attribute.Int("combinations", len(combos)))
	log.InfoContext(
		ctx, "starting run",
		"sites", len(cfg.Sites),
		"countries", len(cfg.Countries),
		"devices", len(cfg.Selection.Devices()),
		"combinations", len(combos),
	)

	outcomes := make([]outcome, len(combos))
	if cfg.Concurrency <= 1 {
		for i, combo := range combos {
			outcomes[i] = runOne(ctx, log, fetcher, cfg, combo)
		}
	} else {
		var group errgroup.Group
		group.SetLimit(cfg.Concurrency)
		for i, combo := range combos {
			group.Go(func() error {
				outcomes[i] = runOne(ctx, log, fetcher, cfg, combo)
				return nil
			})
		}
		// runOne never returns an error
		_ = group.Wait()
	}

	for i, out := range outcomes {
		report.Attempts++
		if out.failure != nil {
			report.Failures = append(report.Failures, CombinationFailure{
				Combination: combos[i],
				Failure:     *out.failure,
			})
			continue
		}
		report.Table.Append(out.rows...)
	}
	report.Elapsed = time.Since(start)

	if report.Table.Empty() {
		span.SetStatus(codes.Error, ErrNoData.Error())
	}
	log.InfoContext(
		ctx, "run finished",
		"attempts", report.Attempts,
		"failures", report.Warnings(),
		"rows", report.Table.Len(),
		"elapsed", report.Elapsed,
	)
	return report, nil
}

func runOne(ctx context.Context, log *slog.Logger, fetcher Fetcher, cfg RunConfig, combo Combination) outcome {
	attrs := metric.WithAttributes(attribute.String("device", string(combo.Device)))
	attemptCounter.Add(ctx, 1, attrs)

	result := fetcher.Fetch(ctx, cfg.request(combo))
	switch res := result.(type) {
	case similarweb.Failure:
		failureCounter.Add(ctx, 1, attrs)
		log.WarnContext(
			ctx, "failed to fetch combination",
			"site", combo.Site,
			"country", combo.Country,
			"device", combo.Device,
			"status", res.StatusCode,
			"body", res.Summary(),
		)
		return outcome{failure: &res}
	case similarweb.Success:
		rows := searchdist.Normalize(res, combo.Site, combo.Country, combo.Device)
		rowCounter.Add(ctx, int64(len(rows)), attrs)
		log.DebugContext(
			ctx, "fetched combination",
			"site", combo.Site,
			"country", combo.Country,
			"device", combo.Device,
			"rows", len(rows),
		)
		return outcome{rows: rows}
	default:
		failure := similarweb.Failure{Body: fmt.Sprintf("fetcher returned unexpected result %T", result)}
		failureCounter.Add(ctx, 1, attrs)
		return outcome{failure: &failure}
	}
}
