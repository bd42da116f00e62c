package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rebfix/internal/config"
)

// BuildVersion is the installer build, set with -ldflags at release time.
var BuildVersion = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rebfix %s (community fix %s, %s/%s)\n",
			BuildVersion, config.Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
