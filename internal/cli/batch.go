package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/in-rolls/missing-daughters-of-pols/internal/collect"
	"github.com/in-rolls/missing-daughters-of-pols/internal/dataset"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/util"
	"github.com/in-rolls/missing-daughters-of-pols/internal/validate"
	"github.com/in-rolls/missing-daughters-of-pols/internal/worker"
)

var (
	batchWorkers int
	batchCombine string
)

// sourceSpec is one entry in the batch sources file.
type sourceSpec struct {
	Name     string            `yaml:"name"`
	ListURL  string            `yaml:"list_url"`
	Selector string            `yaml:"selector"`
	Extra    map[string]string `yaml:"extra"`
}

// collectBatchCmd collects several biography sources in one run.
var collectBatchCmd = &cobra.Command{
	Use:   "batch <sources-file>",
	Short: "Collect several biography sources in parallel",
	Long: `Batch reads a file listing biography sources and collects them over a
worker pool. Sources share one fetch session, so the minimum request
delay holds across all of them.

A .txt file is a plain list of member list URLs, one per line, each
collected with the default link selector and named after its host. A
.yaml file is a list of entries:

  - name: kerala_assembly
    list_url: https://example.org/kerala/members
    selector: "table.members a"
    extra:
      state: Kerala
  - name: up_assembly
    list_url: https://example.org/up/members

Each source is written to <output-dir>/<name>.csv; --combine also
merges them into one deduplicated file.

Example:
  missing-daughters collect batch sources.yaml --workers 4 --combine all.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectBatch,
}

func init() {
	collectCmd.AddCommand(collectBatchCmd)

	collectBatchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "number of concurrent sources (default from config)")
	collectBatchCmd.Flags().StringVar(&batchCombine, "combine", "", "also merge all sources into this file")
	collectBatchCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
}

func runCollectBatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyCollectFlags(cfg)

	specs, err := readSourcesFile(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := collectContext()
	defer cancel()

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

	sources := make([]worker.DatasetSource, 0, len(specs))
	for _, spec := range specs {
		sources = append(sources, collect.NewBiography(session, norm, collect.BiographyConfig{
			Name:         spec.Name,
			ListURL:      spec.ListURL,
			LinkSelector: spec.Selector,
			Extra:        spec.Extra,
		}, robots, assist, logf()))
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Collect.Workers
	}

	fmt.Fprintf(os.Stderr, "Collecting %d sources with %d workers (delay %v)\n",
		len(sources), workers, cfg.HTTP.Delay)

	results := worker.NewBatchCollector(workers).Run(ctx, sources)

	if err := os.MkdirAll(cfg.Collect.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var collected []model.Dataset
	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", res.Source, res.Err)
			continue
		}

		out := filepath.Join(cfg.Collect.OutputDir, res.Source+".csv")
		if err := dataset.SaveCSV(out, res.Dataset); err != nil {
			return fmt.Errorf("save %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "ok   %s: %d records -> %s\n", res.Source, len(res.Dataset), out)
		collected = append(collected, res.Dataset)
	}

	if batchCombine != "" && len(collected) > 0 {
		combined := dataset.Combine(collected, cfg.Collect.KeyColumns)
		if err := saveDataset(batchCombine, combined); err != nil {
			return fmt.Errorf("save combined dataset: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Combined %d records into %s\n", len(combined), batchCombine)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d sources failed", failures, len(results))
	}
	return nil
}

func readSourcesFile(path string) ([]sourceSpec, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		return readURLSources(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var specs []sourceSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("sources file %s lists no sources", path)
	}
	for i, spec := range specs {
		if spec.Name == "" || spec.ListURL == "" {
			return nil, fmt.Errorf("source %d: name and list_url are required", i+1)
		}
		if spec.Selector == "" {
			specs[i].Selector = "a"
		}
	}
	return specs, nil
}

// readURLSources turns a plain URL list into sources, one per line,
// each named after its host.
func readURLSources(path string) ([]sourceSpec, error) {
	urls, err := collect.ReadURLsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("sources file %s lists no URLs", path)
	}

	specs := make([]sourceSpec, 0, len(urls))
	seen := make(map[string]int)
	for _, raw := range urls {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("invalid source URL %q", raw)
		}
		name := strings.ReplaceAll(parsed.Host, ".", "_")
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		specs = append(specs, sourceSpec{Name: name, ListURL: raw, Selector: "a"})
	}
	return specs, nil
}
