package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/psantana5/benchtime/internal/perfcounter"
)

// version is set at build time with -ldflags "-X ...cmd.version=v1.2.3".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("benchtime %s (%s, %s/%s, counters=%t)\n",
			version, runtime.Version(), runtime.GOOS, runtime.GOARCH, perfcounter.Available)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
