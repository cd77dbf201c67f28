package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/in-rolls/missing-daughters-of-pols/internal/store"
)

var datasetsStore string

// datasetsCmd represents the datasets command
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the datasets in a SQLite store",
	Long: `Datasets prints the names and sizes of the datasets saved in a SQLite
store, one per line.

Example:
  missing-daughters datasets --store data.db`,
	RunE: runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)

	datasetsCmd.Flags().StringVar(&datasetsStore, "store", "", "SQLite store file")
	_ = datasetsCmd.MarkFlagRequired("store")
}

func runDatasets(cmd *cobra.Command, args []string) (err error) {
	st, err := store.Open(datasetsStore)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close store: %w", closeErr)
		}
	}()

	names, err := st.Datasets()
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No datasets stored")
		return nil
	}

	for _, name := range names {
		ds, err := st.LoadDataset(name)
		if err != nil {
			return fmt.Errorf("load dataset %q: %w", name, err)
		}
		fmt.Printf("%-30s %6d records (%d complete)\n", name, len(ds), len(ds.Complete()))
	}
	return nil
}
