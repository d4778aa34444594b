package sinkstore

import (
	"context"
	"database/sql"
	"fmt"
	"searchdist/lib/searchdist"
	"searchdist/lib/similarweb"
	"searchdist/lib/telemetry"
	"strings"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "modernc.org/sqlite"
)

var tracer = telemetry.Tracer("searchdist.lib.sinkstore")

// SQLStore appends every row of a table into one database table, it
// always stores the full set of columns regardless of layout.
type SQLStore struct {
	db         *sql.DB
	dialect    dialect
	collection string
}

// StoredRow is a row read back from a store, newest first.
type StoredRow struct {
	ID     int64
	Row    searchdist.MetricRow
	APIKey string
}

func NewSQLStore(database *sql.DB, driver, collection string) (*SQLStore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	err := validateCollection(collection)
	if err != nil {
		return nil, err
	}
	d, _, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: database, dialect: d, collection: collection}, nil
}

// Open connects to a store. sqlite dsns are file paths (or `:memory:`),
// libsql dsns are `libsql://` urls, postgres dsns are anything pgx accepts.
func Open(driver, dsn, collection string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("a sink dsn was not specified")
	}
	_, driverName, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	database, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSqlite {
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		database.SetMaxOpenConns(1)
		if !strings.Contains(dsn, ":memory:") {
			_, err = database.Exec("PRAGMA journal_mode=WAL")
			if err != nil {
				database.Close()
				return nil, err
			}
		}
	}

	store, err := NewSQLStore(database, driver, collection)
	if err != nil {
		database.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.schema(s.collection))
	return err
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Append inserts all rows in one transaction, the table is created on
// first write.
func (s *SQLStore) Append(ctx context.Context, table searchdist.ResultTable, _ searchdist.Layout, apiKey string) error {
	ctx, span := tracer.Start(ctx, "SQLStore:Append")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", s.collection),
		attribute.Int("rows", table.Len()),
	)

	err := s.ensure(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create collection")
		return fmt.Errorf("create %s: %w", s.collection, err)
	}
	if table.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin tx")
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert(s.collection))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to prepare insert")
		return err
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		_, err = stmt.ExecContext(
			ctx,
			row.Site,
			row.Country,
			string(row.Device),
			row.Period,
			nullable(row.TotalSearchVisits),
			nullable(row.BrandedVisits),
			nullable(row.NonBrandedVisits),
			apiKey,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert row")
			return fmt.Errorf("insert into %s: %w", s.collection, err)
		}
	}

	return tx.Commit()
}

// List returns at most `limit` stored rows, newest first.
func (s *SQLStore) List(ctx context.Context, limit int) ([]StoredRow, error) {
	ctx, span := tracer.Start(ctx, "SQLStore:List")
	defer span.End()

	err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.list(s.collection), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query rows")
		return nil, err
	}
	defer rows.Close()

	var out []StoredRow
	for rows.Next() {
		var stored StoredRow
		var device string
		var total, branded, nonBranded sql.NullFloat64
		err = rows.Scan(
			&stored.ID,
			&stored.Row.Site,
			&stored.Row.Country,
			&device,
			&stored.Row.Period,
			&total,
			&branded,
			&nonBranded,
			&stored.APIKey,
		)
		if err != nil {
			return nil, err
		}
		stored.Row.Device = similarweb.Device(device)
		stored.Row.TotalSearchVisits = fromNullable(total)
		stored.Row.BrandedVisits = fromNullable(branded)
		stored.Row.NonBrandedVisits = fromNullable(nonBranded)
		out = append(out, stored)
	}
	return out, rows.Err()
}
