package configutil

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ReadEnv loads an optional .env file from the cwd and then fills T from
// the process environment using `envconfig` struct tags.
func ReadEnv[T any](prefix string) (T, error) {
	var out T

	if err := godotenv.Load(); err != nil {
		// a missing .env is the normal case, only a broken one is worth noting
		if _, statErr := os.Stat(".env"); statErr == nil {
			slog.Warn(".env file found but could not be loaded", "err", err)
		}
	}

	if err := envconfig.Process(prefix, &out); err != nil {
		return out, err
	}
	return out, nil
}
