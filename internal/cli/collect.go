package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/in-rolls/missing-daughters-of-pols/internal/cache"
	"github.com/in-rolls/missing-daughters-of-pols/internal/checkpoint"
	"github.com/in-rolls/missing-daughters-of-pols/internal/collect"
	"github.com/in-rolls/missing-daughters-of-pols/internal/fetch"
	"github.com/in-rolls/missing-daughters-of-pols/internal/llm"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/util"
	"github.com/in-rolls/missing-daughters-of-pols/internal/validate"
)

var (
	collectOut     string
	collectStore   string
	collectDelay   time.Duration
	collectTimeout time.Duration
	noCache        bool
	checkpointPath string
	llmEnabled     bool
	llmModel       string

	rsBaseURL string
	rsStart   int
	rsEnd     int

	bioName     string
	bioListURL  string
	bioSelector string
	bioExtra    []string
	noRobots    bool
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect child counts from a legislator source",
	Long: `Collect fetches legislator biographies from one source, extracts the
number of sons and daughters and writes a normalized dataset.

Runs are resumable: completed member IDs are tracked in a checkpoint
file, and responses are cached so a re-run does not refetch pages.`,
}

// collectRajyaSabhaCmd scans the Rajya Sabha member API by member code.
var collectRajyaSabhaCmd = &cobra.Command{
	Use:   "rajyasabha",
	Short: "Collect from the Rajya Sabha member biography API",
	Long: `Collect member biographies from the Rajya Sabha API by member code.

Example:
  missing-daughters collect rajyasabha --start 1 --end 2500
  missing-daughters collect rajyasabha --start 1 --end 100 --out data/rs.csv -v`,
	RunE: runCollectRajyaSabha,
}

// collectBiographyCmd scrapes an HTML member list page.
var collectBiographyCmd = &cobra.Command{
	Use:   "biography",
	Short: "Collect from an HTML member list page",
	Long: `Collect member biographies by following every member link on a list
page and extracting child counts from the visible page text.

Example:
  missing-daughters collect biography --name kerala_assembly \
    --list-url https://example.org/members --selector "table.members a" \
    --extra state=Kerala
  missing-daughters collect biography --name up --list-url ... --llm`,
	RunE: runCollectBiography,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.AddCommand(collectRajyaSabhaCmd)
	collectCmd.AddCommand(collectBiographyCmd)

	pf := collectCmd.PersistentFlags()
	pf.StringVar(&collectOut, "out", "", "output path (.csv or .json; default <output-dir>/<source>.csv)")
	pf.StringVar(&collectStore, "store", "", "also save the dataset to this SQLite file")
	pf.DurationVar(&collectDelay, "delay", 0, "minimum delay between requests (default from config)")
	pf.DurationVar(&collectTimeout, "timeout", 0, "total collection timeout (0 = none)")
	pf.BoolVar(&noCache, "no-cache", false, "disable response cache (force fresh fetch)")
	pf.StringVar(&checkpointPath, "checkpoint", "", "checkpoint file (default <output-dir>/collection_progress.json)")
	pf.BoolVar(&llmEnabled, "llm", false, "use an LLM to read pages the pattern rules cannot")
	pf.StringVar(&llmModel, "llm-model", "", "LLM model name")

	collectRajyaSabhaCmd.Flags().StringVar(&rsBaseURL, "base-url", collect.DefaultRajyaSabhaURL, "member biography API base URL")
	collectRajyaSabhaCmd.Flags().IntVar(&rsStart, "start", 1, "first member code")
	collectRajyaSabhaCmd.Flags().IntVar(&rsEnd, "end", 2500, "last member code (inclusive)")

	collectBiographyCmd.Flags().StringVar(&bioName, "name", "", "dataset name (e.g. kerala_assembly)")
	collectBiographyCmd.Flags().StringVar(&bioListURL, "list-url", "", "member list page URL")
	collectBiographyCmd.Flags().StringVar(&bioSelector, "selector", "a", "CSS selector for member links on the list page")
	collectBiographyCmd.Flags().StringSliceVar(&bioExtra, "extra", nil, "extra column stamped on every record (key=value, repeatable)")
	collectBiographyCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	_ = collectBiographyCmd.MarkFlagRequired("name")
	_ = collectBiographyCmd.MarkFlagRequired("list-url")
}

// newSession builds the shared rate-limited session, with the response
// cache attached unless disabled.
func newSession(cfg *model.Config) *fetch.Session {
	session := fetch.NewSession(cfg.HTTP)

	if cfg.Cache.Enabled && !noCache {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = filepath.Join(cfg.Collect.OutputDir, "cache")
		}
		session.SetCache(cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL))
	}

	return session
}

// newAssist builds the optional LLM assist. Returns nil when disabled.
func newAssist(cfg *model.Config) (collect.Assist, error) {
	if !llmEnabled && cfg.LLM.Provider == "" {
		return nil, nil
	}

	lcfg := llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
	}
	if llmEnabled && lcfg.Provider == "" {
		lcfg.Provider = "openai"
	}
	if llmModel != "" {
		lcfg.Model = llmModel
	}

	extractor, err := llm.New(lcfg)
	if err != nil {
		return nil, err
	}
	if extractor == nil {
		return nil, nil
	}
	return extractor, nil
}

// collectContext applies the optional overall timeout.
func collectContext() (context.Context, context.CancelFunc) {
	if collectTimeout > 0 {
		return context.WithTimeout(context.Background(), collectTimeout)
	}
	return context.WithCancel(context.Background())
}

func applyCollectFlags(cfg *model.Config) {
	if collectDelay > 0 {
		cfg.HTTP.Delay = collectDelay
	}
}

// writeDataset saves the dataset to the output file and, when asked,
// the SQLite store.
func writeDataset(cfg *model.Config, name string, ds model.Dataset) error {
	out := collectOut
	if out == "" {
		out = filepath.Join(cfg.Collect.OutputDir, name+".csv")
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := saveDataset(out, ds); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d records to %s\n", len(ds), out)

	if collectStore != "" {
		if err := storeDataset(collectStore, name, ds); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved dataset %q to %s\n", name, collectStore)
	}

	return nil
}

func runCollectRajyaSabha(cmd *cobra.Command, args []string) error {
	if rsEnd < rsStart {
		return fmt.Errorf("--end must be >= --start")
	}

	cfg := loadConfig()
	applyCollectFlags(cfg)

	ctx, cancel := collectContext()
	defer cancel()

	cpPath := checkpointPath
	if cpPath == "" {
		cpPath = filepath.Join(cfg.Collect.OutputDir, cfg.Collect.CheckpointFile)
	}
	if err := os.MkdirAll(filepath.Dir(cpPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	progress, err := checkpoint.Load(cpPath)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	session := newSession(cfg)
	norm := validate.New(warnf)

	source := collect.NewRajyaSabha(session, norm, rsBaseURL, rsStart, rsEnd, progress, logf())

	fmt.Fprintf(os.Stderr, "Collecting %s member codes %d-%d (delay %v)\n",
		source.Name(), rsStart, rsEnd, cfg.HTTP.Delay)

	ds, err := source.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if err := progress.Save(); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	return writeDataset(cfg, source.Name(), ds)
}

func runCollectBiography(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyCollectFlags(cfg)

	ctx, cancel := collectContext()
	defer cancel()

	extra, err := parseExtra(bioExtra)
	if err != nil {
		return err
	}

	session := newSession(cfg)
	norm := validate.New(warnf)

	assist, err := newAssist(cfg)
	if err != nil {
		return fmt.Errorf("configure llm assist: %w", err)
	}

	var robots *util.RobotsChecker
	if !noRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	source := collect.NewBiography(session, norm, collect.BiographyConfig{
		Name:         bioName,
		ListURL:      bioListURL,
		LinkSelector: bioSelector,
		Extra:        extra,
	}, robots, assist, logf())

	fmt.Fprintf(os.Stderr, "Collecting %s from %s (delay %v)\n",
		source.Name(), bioListURL, cfg.HTTP.Delay)

	ds, err := source.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	return writeDataset(cfg, source.Name(), ds)
}

// parseExtra turns key=value flags into the extra-column map.
func parseExtra(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extra := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --extra %q: want key=value", pair)
		}
		extra[key] = value
	}
	return extra, nil
}
