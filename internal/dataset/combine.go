package dataset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

// DefaultKeyColumns identifies duplicates across sources when the
// caller does not specify key columns.
var DefaultKeyColumns = []string{"name"}

// Combine concatenates datasets preserving input order, drops rows that
// are exact duplicates across every column, then drops rows duplicated
// on keyColumns alone, keeping the first occurrence. Inputs are not
// mutated.
func Combine(datasets []model.Dataset, keyColumns []string) model.Dataset {
	if len(keyColumns) == 0 {
		keyColumns = DefaultKeyColumns
	}

	seenExact := make(map[string]bool)
	seenKey := make(map[string]bool)

	var out model.Dataset
	for _, ds := range datasets {
		for _, rec := range ds {
			exact := exactKey(rec)
			if seenExact[exact] {
				continue
			}
			seenExact[exact] = true

			key := columnKey(rec, keyColumns)
			if seenKey[key] {
				continue
			}
			seenKey[key] = true

			out = append(out, rec.Clone())
		}
	}

	return out
}

// ColumnValue returns the string form of a named column, covering the
// core fields and the Extra passthrough. Unknown values are empty.
func ColumnValue(r model.Record, col string) string {
	switch col {
	case "name":
		return r.Name
	case "sons":
		return intString(r.Sons)
	case "daughters":
		return intString(r.Daughters)
	case "total_children":
		return intString(r.TotalChildren)
	case "sex_ratio":
		return floatString(r.SexRatio)
	case "inferred":
		if r.Inferred {
			return "true"
		}
		return ""
	default:
		return r.Extra[col]
	}
}

// Columns returns the union of column names across a dataset: the core
// columns in fixed order, then the Extra columns sorted.
func Columns(ds model.Dataset) []string {
	cols := []string{"name", "sons", "daughters", "total_children", "sex_ratio", "inferred"}
	extra := make(map[string]bool)
	for _, r := range ds {
		for k := range r.Extra {
			extra[k] = true
		}
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append(cols, keys...)
}

func columnKey(r model.Record, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = ColumnValue(r, c)
	}
	return strings.Join(parts, "\x1f")
}

func exactKey(r model.Record) string {
	var b strings.Builder
	for _, c := range []string{"name", "sons", "daughters", "total_children", "sex_ratio", "inferred"} {
		b.WriteString(ColumnValue(r, c))
		b.WriteByte('\x1f')
	}
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.Extra[k])
		b.WriteByte('\x1f')
	}
	return b.String()
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
