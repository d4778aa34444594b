package commands

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X searchdist/cmd/searchdist/commands.Version=..."
var Version = ""

func version() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version of searchdist.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "searchdist", version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
