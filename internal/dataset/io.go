package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

// WriteCSV writes the dataset as CSV with columns equal to the union of
// record keys. Missing fields are empty cells.
func WriteCSV(w io.Writer, ds model.Dataset) error {
	cols := Columns(ds)

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(cols))
	for _, rec := range ds {
		for i, c := range cols {
			row[i] = ColumnValue(rec, c)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a dataset written by WriteCSV. Unrecognized columns
// become Extra passthrough fields.
func ReadCSV(r io.Reader) (model.Dataset, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var ds model.Dataset
	for _, row := range rows[1:] {
		var rec model.Record
		for i, col := range header {
			if i >= len(row) {
				break
			}
			val := row[i]
			if val == "" {
				continue
			}
			switch col {
			case "name":
				rec.Name = val
			case "sons":
				rec.Sons = parseIntCell(val)
			case "daughters":
				rec.Daughters = parseIntCell(val)
			case "total_children":
				rec.TotalChildren = parseIntCell(val)
			case "sex_ratio":
				if f, err := strconv.ParseFloat(val, 64); err == nil {
					rec.SexRatio = &f
				}
			case "inferred":
				rec.Inferred = strings.EqualFold(val, "true")
			default:
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[col] = val
			}
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

// SaveCSV writes the dataset to a CSV file, creating parent directories.
func SaveCSV(path string, ds model.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() { _ = f.Close() }()
	return WriteCSV(f, ds)
}

// LoadCSV reads a dataset from a CSV file.
func LoadCSV(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// SaveJSON writes the dataset as an indented JSON array.
func SaveJSON(path string, ds model.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// LoadJSON reads a dataset from a JSON array file.
func LoadJSON(path string) (model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}
	return ds, nil
}

// Load reads a dataset from a path, picking the codec by extension
// (.csv or .json).
func Load(path string) (model.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", path)
	}
}

func parseIntCell(s string) *int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}
