package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/in-rolls/missing-daughters-of-pols/internal/dataset"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

var (
	combineOut   string
	combineKeys  []string
	combineStore string
	combineSave  string
)

// combineCmd represents the combine command
var combineCmd = &cobra.Command{
	Use:   "combine <input>...",
	Short: "Merge datasets into one deduplicated dataset",
	Long: `Combine concatenates datasets and removes duplicates: first rows that
are identical in every column, then rows sharing the same values in the
key columns. The first occurrence of a duplicate is kept, so list the
most trusted input first.

Inputs are CSV or JSON files; with --store they are dataset names read
from the SQLite file instead.

Example:
  missing-daughters combine data/rajyasabha.csv data/kerala.csv --out all.csv
  missing-daughters combine rs kerala --store data.db --keys name,state`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVar(&combineOut, "out", "combined.csv", "output path (.csv or .json)")
	combineCmd.Flags().StringSliceVar(&combineKeys, "keys", nil, "key columns for deduplication (default name)")
	combineCmd.Flags().StringVar(&combineStore, "store", "", "read inputs as dataset names from this SQLite file")
	combineCmd.Flags().StringVar(&combineSave, "save-as", "", "also save the combined dataset under this name in the store")
}

func runCombine(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	keys := combineKeys
	if len(keys) == 0 {
		keys = cfg.Collect.KeyColumns
	}

	var datasets []model.Dataset
	total := 0
	for _, input := range args {
		var (
			ds  model.Dataset
			err error
		)
		if combineStore != "" {
			ds, err = loadStoredDataset(combineStore, input)
		} else {
			ds, err = dataset.Load(input)
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", input, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Loaded %d records from %s\n", len(ds), input)
		}
		total += len(ds)
		datasets = append(datasets, ds)
	}

	combined := dataset.Combine(datasets, keys)
	fmt.Fprintf(os.Stderr, "Combined %d records into %d (removed %d duplicates)\n",
		total, len(combined), total-len(combined))

	if err := saveDataset(combineOut, combined); err != nil {
		return fmt.Errorf("save combined dataset: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", combineOut)

	if combineSave != "" {
		if combineStore == "" {
			return fmt.Errorf("--save-as requires --store")
		}
		if err := storeDataset(combineStore, combineSave, combined); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved dataset %q to %s\n", combineSave, combineStore)
	}

	return nil
}
