package sinkstore

import "fmt"

type dialect int

const (
	dialectSqlite dialect = iota
	dialectPostgres
)

// driver names accepted by Open, "postgres" maps onto the pgx stdlib driver
const (
	DriverSqlite   = "sqlite"
	DriverLibsql   = "libsql"
	DriverPostgres = "postgres"
)

func dialectFor(driver string) (dialect, string, error) {
	switch driver {
	case DriverSqlite:
		return dialectSqlite, "sqlite", nil
	case DriverLibsql:
		return dialectSqlite, "libsql", nil
	case DriverPostgres, "pgx":
		return dialectPostgres, "pgx", nil
	}
	return 0, "", fmt.Errorf("unsupported sink driver %q", driver)
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	site TEXT NOT NULL,
	country TEXT NOT NULL,
	device TEXT NOT NULL,
	period TEXT NOT NULL,
	total_search_visits REAL,
	branded_visits REAL,
	non_branded_visits REAL,
	api_key TEXT NOT NULL
)`

const postgresSchema = `CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	site TEXT NOT NULL,
	country TEXT NOT NULL,
	device TEXT NOT NULL,
	period TEXT NOT NULL,
	total_search_visits DOUBLE PRECISION,
	branded_visits DOUBLE PRECISION,
	non_branded_visits DOUBLE PRECISION,
	api_key TEXT NOT NULL
)`

func (d dialect) schema(collection string) string {
	if d == dialectPostgres {
		return fmt.Sprintf(postgresSchema, collection)
	}
	return fmt.Sprintf(sqliteSchema, collection)
}

func (d dialect) insert(collection string) string {
	placeholders := "?, ?, ?, ?, ?, ?, ?, ?"
	if d == dialectPostgres {
		placeholders = "$1, $2, $3, $4, $5, $6, $7, $8"
	}
	return fmt.Sprintf(
		`INSERT INTO %s (site, country, device, period, total_search_visits, branded_visits, non_branded_visits, api_key)
		VALUES (%s)`,
		collection, placeholders,
	)
}

func (d dialect) list(collection string) string {
	limit := "LIMIT ?"
	if d == dialectPostgres {
		limit = "LIMIT $1"
	}
	return fmt.Sprintf(
		`SELECT id, site, country, device, period, total_search_visits, branded_visits, non_branded_visits, api_key
		FROM %s ORDER BY id DESC %s`,
		collection, limit,
	)
}
