package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/notation"
	"github.com/ppiankov/clausegen/internal/score"
	"github.com/ppiankov/clausegen/internal/store"
)

var (
	inspectSample int
	inspectScore  bool
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <records.jsonl>",
	Short: "Render stored records as reasoning-chain notation",
	Long: `Inspect reads an output log and prints every record with its variations,
reasoning chains and evidence in compact notation. The original clause is
shown once, with the first record printed.

Example:
  clausegen inspect samples/contracts/negotiation_variations/batch1.jsonl
  clausegen inspect batch1.jsonl --sample 3
  clausegen inspect batch1.jsonl --score`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := store.ReadRecords(args[0], logger)
		if err != nil {
			return err
		}
		return inspectRecords(cmd.OutOrStdout(), records, inspectSample, inspectScore)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectSample, "sample", -1, "render only the record at this zero-based index")
	inspectCmd.Flags().BoolVar(&inspectScore, "score", false, "append the support index and its signals to each record")
}

// inspectRecords renders all records, or just records[sample] when sample >= 0
func inspectRecords(w io.Writer, records []model.ClauseRecord, sample int, withScore bool) error {
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No records found")
		return nil
	}

	if sample >= 0 {
		if sample >= len(records) {
			return fmt.Errorf("sample index %d out of range (file has %d records)", sample, len(records))
		}
		fmt.Fprintln(w, notation.Analysis(&records[sample], notation.AnalysisOptions{ShowOriginal: true}))
		if withScore {
			printScore(w, score.NewScorer().Calculate(records[sample].NegotiationAnalysis))
		}
		return nil
	}

	fmt.Fprintf(os.Stderr, "Found %d records\n\n", len(records))
	scorer := score.NewScorer()
	for i := range records {
		fmt.Fprintln(w, notation.Analysis(&records[i], notation.AnalysisOptions{ShowOriginal: i == 0}))
		if withScore {
			printScore(w, scorer.Calculate(records[i].NegotiationAnalysis))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printScore(w io.Writer, s model.Score) {
	fmt.Fprintf(w, "SUPPORT INDEX: %d/100 (confidence: %s)\n", s.Index, s.Confidence)
	for _, sig := range s.Signals {
		marker := "✓"
		if sig.Severity != model.SeverityInfo {
			marker = "✗"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", marker, sig.Type, sig.Description)
	}
}
