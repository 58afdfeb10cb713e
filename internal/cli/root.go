package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/clausegen/internal/model"
)

var (
	cfgFile string
	verbose bool

	// logger is built before any subcommand runs
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clausegen",
	Short: "Clausegen - negotiation variation generator for legal clauses",
	Long: `Clausegen turns a file of legal clauses into synthetic negotiation
variations. For every clause a language model proposes ranked rewrites, each
justified by a structured reasoning chain of claims, evidence and argument
links.

Records are appended to a JSON Lines log. Runs are resumable: a clause whose
fingerprint already appears in the log is skipped.

Clausegen does not judge whether the generated legal reasoning is correct.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Clausegen.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "clausegen v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clausegen/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".clausegen"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CLAUSEGEN_LLM_PROVIDER maps to llm.provider
	viper.SetEnvPrefix("CLAUSEGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file, environment and bound flags over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	for key, value := range defaultSettings(cfg) {
		viper.SetDefault(key, value)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// defaultSettings registers every key so AutomaticEnv can see it during Unmarshal
func defaultSettings(cfg *model.Config) map[string]any {
	return map[string]any{
		"llm.provider":                      cfg.LLM.Provider,
		"llm.model":                         cfg.LLM.Model,
		"llm.api_key":                       cfg.LLM.APIKey,
		"llm.base_url":                      cfg.LLM.BaseURL,
		"llm.timeout":                       cfg.LLM.Timeout,
		"llm.max_tokens":                    cfg.LLM.MaxTokens,
		"llm.temperature":                   cfg.LLM.Temperature,
		"llm.http_proxy":                    cfg.LLM.HTTPProxy,
		"llm.https_proxy":                   cfg.LLM.HTTPSProxy,
		"llm.no_proxy":                      cfg.LLM.NoProxy,
		"generation.max_attempts":           cfg.Generation.MaxAttempts,
		"generation.resume":                 cfg.Generation.Resume,
		"generation.start_offset":           cfg.Generation.StartOffset,
		"generation.max_samples":            cfg.Generation.MaxSamples,
		"concurrency.workers":               cfg.Concurrency.Workers,
		"rate_limiting.requests_per_second": cfg.RateLimiting.RequestsPerSecond,
		"rate_limiting.burst_size":          cfg.RateLimiting.BurstSize,
		"cache.enabled":                     cfg.Cache.Enabled,
		"cache.dir":                         cfg.Cache.Dir,
		"cache.ttl":                         cfg.Cache.TTL,
		"cache.memory_ttl":                  cfg.Cache.MemoryTTL,
		"journal.path":                      cfg.Journal.Path,
		"output.dir":                        cfg.Output.Dir,
		"output.verbose":                    cfg.Output.Verbose,
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
