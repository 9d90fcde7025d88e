package cmd

import (
	"fmt"
	"runtime"

	"github.com/huangsam/kpiboard/schema"
	"github.com/spf13/cobra"
)

// versionCmd prints build details plus the scoring constants baked into the binary.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kpiboard build and scoring defaults.",
	Long: `Print build details for bug reports, followed by the scoring defaults
compiled into this binary: the selectable coefficients and the month layout.

Use --short to print only the release version.`,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		if short, _ := cmd.Flags().GetBool("short"); short {
			_, _ = fmt.Fprintln(out, version)
			return
		}
		_, _ = fmt.Fprintf(out, "kpiboard %s (%s, built %s)\n", version, commit, date)
		_, _ = fmt.Fprintf(out, "  Go:           %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		_, _ = fmt.Fprintf(out, "  Coefficients: %v\n", schema.Coefficients)
		_, _ = fmt.Fprintf(out, "  Month format: %s\n", schema.MonthLayout)
	},
}
