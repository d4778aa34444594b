package commands

import (
	"fmt"
	"os"
	"searchdist/lib/configutil"
	"searchdist/lib/export"
	"searchdist/lib/sinkstore"
)

// ConfigFile is searched for from the cwd upwards, a
// `searchdist.local.json5` next to it overrides its values.
const ConfigFile = "searchdist.json5"

type SinkConfig struct {
	// sqlite, libsql or postgres
	Driver string `json:"driver"`
	Dsn    string `json:"dsn"`
	// only used by libsql
	AuthToken  string `json:"auth_token"`
	Collection string `json:"collection"`
	// if set, rows are also appended to <csv_dir>/<collection>.csv
	CsvDir string `json:"csv_dir"`
}

type Config struct {
	ApiKey  string `json:"api_key"`
	BaseUrl string `json:"base_url"`
	// sends the client identification header unless explicitly false
	SourceHeader   *bool             `json:"source_header"`
	TimeoutSeconds int               `json:"timeout_seconds"`
	Concurrency    int               `json:"concurrency"`
	Countries      []string          `json:"countries"`
	Sink           SinkConfig        `json:"sink"`
	Smtp           export.SmtpConfig `json:"smtp"`
}

// Env holds secrets, they win over the config file.
type Env struct {
	ApiKey        string `envconfig:"SIMILARWEB_API_KEY"`
	SinkDsn       string `envconfig:"SEARCHDIST_SINK_DSN"`
	SinkAuthToken string `envconfig:"SEARCHDIST_SINK_AUTH_TOKEN"`
	SmtpPassword  string `envconfig:"SEARCHDIST_SMTP_PASSWORD"`
}

func (e Env) apply(cfg Config) Config {
	if e.ApiKey != "" {
		cfg.ApiKey = e.ApiKey
	}
	if e.SinkDsn != "" {
		cfg.Sink.Dsn = e.SinkDsn
	}
	if e.SmtpPassword != "" {
		cfg.Smtp.Password = e.SmtpPassword
	}
	if e.SinkAuthToken != "" {
		cfg.Sink.AuthToken = e.SinkAuthToken
	}
	return cfg
}

// loadConfig reads the optional config file and then the environment.
func loadConfig() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config](ConfigFile)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	env, err := configutil.ReadEnv[Env]("")
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return env.apply(cfg), nil
}

func (c SinkConfig) open() (*sinkstore.SQLStore, error) {
	driver := c.Driver
	if driver == "" {
		driver = sinkstore.DriverSqlite
	}
	dsn := c.Dsn
	if driver == sinkstore.DriverLibsql {
		var err error
		dsn, err = sinkstore.LibsqlDsn(dsn, c.AuthToken)
		if err != nil {
			return nil, err
		}
	}
	return sinkstore.Open(driver, dsn, c.Collection)
}

func (c SinkConfig) sinks() ([]sinkstore.Sink, func(), error) {
	var sinks []sinkstore.Sink
	var closers []func() error
	closeAll := func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}

	if c.Dsn != "" {
		store, err := c.open()
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
	}
	if c.CsvDir != "" {
		sink, err := sinkstore.NewCSVFileSink(c.CsvDir, c.Collection)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sinks = append(sinks, sink)
	}

	return sinks, closeAll, nil
}
