package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausegen/internal/ledger"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <records.jsonl>...",
	Short: "Count records and unique clauses across output logs",
	Long: `Stats scans one or more output logs in parallel and reports, per file, the
number of well-formed records, malformed lines and distinct clause
fingerprints, followed by the number of distinct clauses across all files.

Example:
  clausegen stats out/*.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		led, stats, err := ledger.LoadLedgers(cmd.Context(), args, logger)
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats, led.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(w io.Writer, stats []ledger.FileStats, unique int) {
	records := 0
	for _, s := range stats {
		records += s.Records
		fmt.Fprintf(w, "%s\n", s.Path)
		fmt.Fprintf(w, "  Records:    %d\n", s.Records)
		fmt.Fprintf(w, "  Unique:     %d\n", s.Unique)
		if s.Malformed > 0 {
			fmt.Fprintf(w, "  Malformed:  %d\n", s.Malformed)
		}
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Total records:     %d\n", records)
	fmt.Fprintf(w, "  Distinct clauses:  %d\n", unique)
}
