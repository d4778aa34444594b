package main

import (
	"context"
	"log/slog"
	"os"
	"searchdist/cmd/searchdist/commands"
	"searchdist/lib/serviceutil"
	"searchdist/lib/telemetry"
	"time"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "searchdist")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if tel.MetricsEnabled() {
		telemetry.InstrumentPerfStats(ctx, time.Second*5)
	}

	runErr := commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	err = tel.Shutdown(shutdownCtx)
	cancel()
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}

	if runErr != nil {
		os.Exit(1)
	}
}
