package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/in-rolls/missing-daughters-of-pols/internal/dataset"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/stats"
)

var (
	statsStore string
	statsOut   string
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <input>",
	Short: "Summarize sex-ratio statistics for a dataset",
	Long: `Stats computes summary statistics over the records with both counts
known: totals, means, the son/daughter sex ratio and the proportion of
daughters. Records missing either count are skipped.

The input is a CSV or JSON file; with --store it is a dataset name in
the SQLite file.

Example:
  missing-daughters stats combined.csv
  missing-daughters stats rs --store data.db --out summary.json`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsStore, "store", "", "read the input as a dataset name from this SQLite file")
	statsCmd.Flags().StringVar(&statsOut, "out", "", "write the summary JSON to this file instead of stdout")
}

func runStats(cmd *cobra.Command, args []string) error {
	input := args[0]

	var (
		ds  model.Dataset
		err error
	)
	if statsStore != "" {
		ds, err = loadStoredDataset(statsStore, input)
	} else {
		ds, err = dataset.Load(input)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	summary, err := stats.Summarize(ds)
	if err != nil {
		if errors.Is(err, stats.ErrNoCompleteRecords) {
			return fmt.Errorf("%s: %w", input, err)
		}
		return fmt.Errorf("summarize %s: %w", input, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%d of %d records have both counts\n",
			summary.NPoliticians, len(ds))
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	if statsOut != "" {
		if err := os.WriteFile(statsOut, append(out, '\n'), 0644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", statsOut)
		return nil
	}

	fmt.Println(string(out))
	return nil
}
