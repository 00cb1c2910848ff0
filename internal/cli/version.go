package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("automaker %s\n", build.Version)
		fmt.Printf("  commit:     %s\n", build.Commit)
		fmt.Printf("  build date: %s\n", build.BuildDate)
		fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
