package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/clausegen/internal/cache"
	"github.com/ppiankov/clausegen/internal/generate"
	"github.com/ppiankov/clausegen/internal/journal"
	"github.com/ppiankov/clausegen/internal/llm"
	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/pipeline"
	"github.com/ppiankov/clausegen/internal/store"
	"github.com/ppiankov/clausegen/internal/worker"
)

var (
	outputName string
	noResume   bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <clauses.jsonl>",
	Short: "Generate negotiation variations for a file of clauses",
	Long: `Generate reads clauses (one JSON object per line with clause, clause_type,
area_of_law, location, industry and date) and asks the configured language
model for ranked negotiation variations with reasoning chains.

Each accepted analysis is appended to the output log as one JSON line.
With resume (the default) clauses already present in the log are skipped,
so an interrupted run continues where it stopped when given the same
--output-name.

Example:
  clausegen generate clauses.jsonl --output-name batch1.jsonl
  clausegen generate clauses.jsonl --max-workers 8 --rps 2 --provider anthropic
  clausegen generate clauses.jsonl --start-offset 100 --max-samples 50 --no-resume`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.String("output-dir", "", "output directory for the record log")
	flags.StringVar(&outputName, "output-name", "", "output file name (default: variations_<timestamp>.jsonl)")
	flags.BoolVar(&noResume, "no-resume", false, "truncate the output log instead of skipping finished clauses")
	flags.Int("start-offset", 0, "skip this many input clauses")
	flags.Int("max-samples", 0, "process at most this many clauses (0 = all)")
	flags.Int("max-workers", 1, "concurrent generations (1 = sequential, input order)")
	flags.Int("max-attempts", 3, "provider calls per clause before it counts as failed")
	flags.String("provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	flags.String("model", "", "LLM model name")
	flags.Float64("rps", 0, "provider requests per second across workers (0 = unlimited)")
	flags.Bool("cache", false, "cache accepted completions on disk")
	flags.String("journal", "", "SQLite run journal path (empty = disabled)")

	for flag, key := range map[string]string{
		"output-dir":   "output.dir",
		"start-offset": "generation.start_offset",
		"max-samples":  "generation.max_samples",
		"max-workers":  "concurrency.workers",
		"max-attempts": "generation.max_attempts",
		"provider":     "llm.provider",
		"model":        "llm.model",
		"rps":          "rate_limiting.requests_per_second",
		"cache":        "cache.enabled",
		"journal":      "journal.path",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// generateJob is one resolved generate invocation
type generateJob struct {
	Input       string
	Output      string
	Resume      bool
	StartOffset int
	MaxSamples  int
	Workers     int
	JournalPath string
	Provider    string
	Model       string
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := outputName
	if name == "" {
		name = store.DefaultOutputName(time.Now())
	}
	job := generateJob{
		Input:       args[0],
		Output:      filepath.Join(cfg.Output.Dir, name),
		Resume:      cfg.Generation.Resume && !noResume,
		StartOffset: cfg.Generation.StartOffset,
		MaxSamples:  cfg.Generation.MaxSamples,
		Workers:     cfg.Concurrency.Workers,
		JournalPath: cfg.Journal.Path,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmCfg := llm.ApplyEnv(llm.ConfigFromModel(cfg.LLM))
	// a model picked from the environment must reach the cache key too
	cfg.LLM.Model = llmCfg.Model
	provider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	job.Provider = provider.Name()
	job.Model = cfg.LLM.Model
	if job.Model == "" {
		job.Model = "default"
	}

	gen := generate.NewLLMGenerator(provider, generatorOptions(cfg))

	summary, err := executeGenerate(ctx, os.Stderr, job, gen)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "✗ Interrupted after %d new records; progress saved.\n", summary.Succeeded)
		fmt.Fprintf(os.Stderr, "  Resume with: clausegen generate %s --output-name %s\n\n", job.Input, filepath.Base(job.Output))
		return nil
	}
	return err
}

func generatorOptions(cfg *model.Config) generate.Options {
	opts := generate.DefaultOptions()
	opts.MaxAttempts = cfg.Generation.MaxAttempts
	opts.Model = cfg.LLM.Model
	opts.MaxTokens = cfg.LLM.MaxTokens
	opts.Temperature = cfg.LLM.Temperature
	opts.Logger = logger

	if cfg.RateLimiting.RequestsPerSecond > 0 {
		opts.Limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}
	if cfg.Cache.Enabled {
		opts.Cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.TTL)
		opts.CacheTTL = cfg.Cache.TTL
	}
	return opts
}

// executeGenerate runs one batch and prints the banners to w. The summary is
// returned even when err is set.
func executeGenerate(ctx context.Context, w io.Writer, job generateJob, gen generate.Generator) (pipeline.Summary, error) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s\n", banner)
	fmt.Fprintf(w, "  Clausegen Generation\n")
	fmt.Fprintf(w, "%s\n", banner)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Input file:   %s\n", job.Input)
	fmt.Fprintf(w, "  Output file:  %s\n", job.Output)
	fmt.Fprintf(w, "  Resume:       %v\n", job.Resume)
	fmt.Fprintf(w, "  Workers:      %d\n", max(job.Workers, 1))
	if job.Provider != "" {
		fmt.Fprintf(w, "  LLM:          %s/%s\n", job.Provider, job.Model)
	}
	fmt.Fprintf(w, "\n")

	clauses, err := store.ReadClauses(job.Input, logger)
	if err != nil {
		return pipeline.Summary{}, err
	}
	total := len(clauses)
	clauses = store.Window(clauses, job.StartOffset, job.MaxSamples)
	fmt.Fprintf(w, "✓ Loaded %d clauses (%d selected)\n", total, len(clauses))

	out, led, err := pipeline.PrepareOutput(job.Output, job.Resume, logger)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer out.Close()
	if job.Resume && led.Len() > 0 {
		fmt.Fprintf(w, "✓ Resuming: %d clauses already in the output log\n", led.Len())
	}

	opts := pipeline.Options{Workers: job.Workers, Logger: logger}

	var run *journal.Run
	if job.JournalPath != "" {
		js, err := journal.Open(job.JournalPath)
		if err != nil {
			return pipeline.Summary{}, err
		}
		defer js.Close()

		run, err = js.StartRun(ctx, journal.RunInfo{
			Input:    job.Input,
			Output:   job.Output,
			Provider: job.Provider,
			Model:    job.Model,
			Workers:  max(job.Workers, 1),
		})
		if err != nil {
			return pipeline.Summary{}, err
		}
		opts.Recorder = run
		fmt.Fprintf(w, "✓ Journal run %s\n", run.ID())
	}

	fmt.Fprintf(w, "\n⚙️  Generating...\n")
	summary, runErr := pipeline.New(gen, opts).Run(ctx, clauses, out, led)

	if run != nil {
		if err := run.Finish(context.WithoutCancel(ctx), summary, runErr); err != nil {
			logger.Warn("journal finish failed", zap.String("run", run.ID()), zap.Error(err))
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s\n", banner)
	fmt.Fprintf(w, "  Generation Complete\n")
	fmt.Fprintf(w, "%s\n", banner)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Total:        %d clauses\n", summary.Total)
	fmt.Fprintf(w, "  Success:      %d\n", summary.Succeeded)
	fmt.Fprintf(w, "  Skipped:      %d\n", summary.Skipped)
	fmt.Fprintf(w, "  Failures:     %d\n", summary.Failed)
	if summary.Interrupted > 0 {
		fmt.Fprintf(w, "  Interrupted:  %d\n", summary.Interrupted)
	}
	fmt.Fprintf(w, "  Output:       %s\n", out.Path())
	fmt.Fprintf(w, "\n")

	return summary, runErr
}
