package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausegen/internal/journal"
	"github.com/ppiankov/clausegen/internal/pipeline"
)

var runsLimit int

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List generation runs recorded in the journal",
	Long: `Runs lists past generate invocations from the SQLite journal, newest first.
The journal is written when generate is given --journal (or journal.path in
the config file).

Example:
  clausegen runs --journal clausegen.db
  clausegen runs show <run-id> --journal clausegen.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		js, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer js.Close()

		runs, err := js.Runs(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its per-clause outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		js, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer js.Close()

		run, err := js.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		outcomes, err := js.Outcomes(cmd.Context(), run.ID)
		if err != nil {
			return err
		}
		printRun(cmd.OutOrStdout(), run, outcomes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCmd.PersistentFlags().String("journal", "", "SQLite run journal path")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list (0 = all)")
}

// openJournal resolves --journal from cmd, which also sees the flag when it
// is inherited from runs by a subcommand.
func openJournal(cmd *cobra.Command) (*journal.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.Journal.Path
	if f := cmd.Flag("journal"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path == "" {
		return nil, fmt.Errorf("no journal configured (use --journal or journal.path)")
	}
	return journal.Open(path)
}

func printRuns(w io.Writer, runs []journal.RunInfo) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tTOTAL\tOK\tFAILED\tSKIPPED\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status,
			r.Summary.Total, r.Summary.Succeeded, r.Summary.Failed, r.Summary.Skipped, r.Output)
	}
	tw.Flush()
}

func printRun(w io.Writer, run journal.RunInfo, outcomes []journal.OutcomeRow) {
	fmt.Fprintf(w, "Run:       %s\n", run.ID)
	fmt.Fprintf(w, "Status:    %s\n", run.Status)
	fmt.Fprintf(w, "Input:     %s\n", run.Input)
	fmt.Fprintf(w, "Output:    %s\n", run.Output)
	fmt.Fprintf(w, "LLM:       %s/%s (%d workers)\n", run.Provider, run.Model, run.Workers)
	fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Local().Format(time.DateTime))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(w, "Duration:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	if run.Error != "" {
		fmt.Fprintf(w, "Error:     %s\n", run.Error)
	}
	fmt.Fprintln(w)

	for _, o := range outcomes {
		marker := "✓"
		switch o.Status {
		case pipeline.StatusFailed:
			marker = "✗"
		case pipeline.StatusSkipped, pipeline.StatusInterrupted:
			marker = "-"
		}
		line := fmt.Sprintf("%s %4d %s %s", marker, o.Index, o.Fingerprint, o.Status)
		if o.Error != "" {
			line += ": " + o.Error
		}
		fmt.Fprintln(w, line)
	}
}
