package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("folio %s\n", orUnknown(buildInfo.Version))
		fmt.Printf("  commit:  %s\n", orUnknown(buildInfo.Commit))
		fmt.Printf("  built:   %s\n", orUnknown(buildInfo.BuildDate))
		fmt.Printf("  go:      %s\n", runtime.Version())
	},
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
