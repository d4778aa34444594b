package commands

import (
	"context"
	"fmt"
	"os"
	"searchdist/lib/telemetry"

	"github.com/spf13/cobra"
)

var debugLogging bool

var rootCmd = &cobra.Command{
	Use:   "searchdist",
	Short: "searchdist fetches branded and non-branded search visits from similarweb.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(debugLogging)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}
