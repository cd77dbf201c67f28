package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/in-rolls/missing-daughters-of-pols/internal/dataset"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/store"
)

// saveDataset writes the dataset as CSV or JSON based on extension.
func saveDataset(path string, ds model.Dataset) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.SaveCSV(path, ds)
	case ".json":
		return dataset.SaveJSON(path, ds)
	default:
		return fmt.Errorf("unsupported output extension %q (want .csv or .json)", filepath.Ext(path))
	}
}

// storeDataset saves the dataset under name in the SQLite store.
func storeDataset(path, name string, ds model.Dataset) (err error) {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close store: %w", closeErr)
		}
	}()

	if err := st.SaveDataset(name, ds); err != nil {
		return fmt.Errorf("save dataset %q: %w", name, err)
	}
	return nil
}

// loadStoredDataset reads one named dataset from the SQLite store.
func loadStoredDataset(path, name string) (ds model.Dataset, err error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil && err == nil {
			ds, err = nil, fmt.Errorf("close store: %w", closeErr)
		}
	}()

	ds, err = st.LoadDataset(name)
	if err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", name, err)
	}
	return ds, nil
}
