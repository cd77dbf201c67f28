package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "missing-daughters",
	Short: "Collect son/daughter counts from Indian legislator biographies",
	Long: `missing-daughters builds datasets of the number of sons and daughters
of Indian politicians from their official biographies.

It fetches member pages politely (rate limited, cached, resumable),
extracts child counts from English and Hindi text, normalizes the
records and combines sources into a single deduplicated dataset with
summary sex-ratio statistics.

Counts inferred from phrasing rather than stated outright are flagged,
never silently mixed in.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("missing-daughters v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.missing-daughters/config.yaml)")
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

		viper.AddConfigPath(home + "/.missing-daughters")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match MISSING_DAUGHTERS_*
	viper.SetEnvPrefix("MISSING_DAUGHTERS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the runtime config: defaults, then config file and
// environment overrides. Flags are applied by the commands on top.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetDuration("http.delay"); v > 0 {
		cfg.HTTP.Delay = v
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.HTTP.Timeout = v
	}
	if v := viper.GetString("http.user_agent"); v != "" {
		cfg.HTTP.UserAgent = v
	}
	if viper.IsSet("http.max_retries") {
		cfg.HTTP.MaxRetries = viper.GetInt("http.max_retries")
	}
	if v := viper.GetDuration("http.rate_limit_wait"); v > 0 {
		cfg.HTTP.RateLimitWait = v
	}
	if v := viper.GetString("http.http_proxy"); v != "" {
		cfg.HTTP.HTTPProxy = v
	}
	if v := viper.GetString("http.https_proxy"); v != "" {
		cfg.HTTP.HTTPSProxy = v
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetDuration("cache.memory_ttl"); v > 0 {
		cfg.Cache.MemoryTTL = v
	}
	if v := viper.GetDuration("cache.disk_ttl"); v > 0 {
		cfg.Cache.DiskTTL = v
	}

	if v := viper.GetString("collect.output_dir"); v != "" {
		cfg.Collect.OutputDir = v
	}
	if v := viper.GetString("collect.checkpoint_file"); v != "" {
		cfg.Collect.CheckpointFile = v
	}
	if v := viper.GetInt("collect.workers"); v > 0 {
		cfg.Collect.Workers = v
	}
	if v := viper.GetStringSlice("collect.key_columns"); len(v) > 0 {
		cfg.Collect.KeyColumns = v
	}

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.LLM.MaxTokens = v
	}

	cfg.Output.Verbose = verbose
	return cfg
}

// logf returns a progress logger honoring --verbose.
func logf() func(string, ...any) {
	if !verbose {
		return nil
	}
	return func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// warnf writes validation warnings to stderr. Unlike logf this is not
// gated on --verbose: bad input values should always surface.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
