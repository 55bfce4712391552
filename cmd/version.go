package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via -ldflags)
// These default values indicate a development build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version information for pagescan; --verbose adds build details",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !verbose {
			fmt.Fprintf(out, "pagescan version %s\n", Version)
			return
		}
		fmt.Fprintf(out, `pagescan Version Information:
  Version:    %s
  Git Commit: %s
  Build Date: %s
  Go Version: %s
  OS/Arch:    %s/%s
`, Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
