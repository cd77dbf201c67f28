package dataset

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

func TestCombine_KeyDedup(t *testing.T) {
	dsA := model.Dataset{
		{Name: "A. Kumar", Sons: model.Int(2), Daughters: model.Int(1), Extra: map[string]string{"state": "Kerala"}},
		{Name: "B. Singh", Sons: model.Int(1), Daughters: model.Int(2)},
	}
	dsB := model.Dataset{
		// Same name, different fields: key dedup keeps dsA's row.
		{Name: "A. Kumar", Sons: model.Int(5), Daughters: model.Int(5)},
		{Name: "C. Devi", Daughters: model.Int(1)},
	}

	out := Combine([]model.Dataset{dsA, dsB}, []string{"name"})
	if len(out) != len(dsA)+len(dsB)-1 {
		t.Fatalf("expected %d rows, got %d", len(dsA)+len(dsB)-1, len(out))
	}
	if out[0].Name != "A. Kumar" || *out[0].Sons != 2 {
		t.Errorf("first occurrence must be retained, got %+v", out[0])
	}
	if out[0].Extra["state"] != "Kerala" {
		t.Error("passthrough fields of the first occurrence must survive")
	}
	if out[2].Name != "C. Devi" {
		t.Errorf("row order must follow concatenation order, got %s", out[2].Name)
	}
}

func TestCombine_ExactDedup(t *testing.T) {
	rec := model.Record{Name: "A. Kumar", Sons: model.Int(2), Daughters: model.Int(1)}
	ds := model.Dataset{rec, rec.Clone()}

	out := Combine([]model.Dataset{ds}, nil)
	if len(out) != 1 {
		t.Fatalf("expected exact duplicate removed, got %d rows", len(out))
	}
}

func TestCombine_DefaultKeyColumns(t *testing.T) {
	dsA := model.Dataset{{Name: "X", Sons: model.Int(1), Daughters: model.Int(1)}}
	dsB := model.Dataset{{Name: "X", Sons: model.Int(2), Daughters: model.Int(2)}}

	out := Combine([]model.Dataset{dsA, dsB}, nil)
	if len(out) != 1 {
		t.Fatalf("default key columns should dedupe by name, got %d rows", len(out))
	}
}

func TestCombine_DoesNotMutateInputs(t *testing.T) {
	dsA := model.Dataset{{Name: "X", Extra: map[string]string{"k": "v"}}}
	out := Combine([]model.Dataset{dsA}, nil)
	out[0].Extra["k"] = "changed"
	out[0].Name = "changed"
	if dsA[0].Extra["k"] != "v" || dsA[0].Name != "X" {
		t.Error("combine must not alias input records")
	}
}

func TestCombine_MultiKeyColumns(t *testing.T) {
	dsA := model.Dataset{{Name: "X", Extra: map[string]string{"state": "Kerala"}}}
	dsB := model.Dataset{{Name: "X", Extra: map[string]string{"state": "Rajasthan"}}}

	out := Combine([]model.Dataset{dsA, dsB}, []string{"name", "state"})
	if len(out) != 2 {
		t.Fatalf("distinct states must not collide, got %d rows", len(out))
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	ds := model.Dataset{
		{Name: "A. Kumar", Sons: model.Int(2), Daughters: model.Int(1),
			TotalChildren: model.Int(3), SexRatio: floatPtr(2.0),
			Extra: map[string]string{"state": "Kerala", "party": "INC"}},
		{Name: "B. Singh", Inferred: true},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if !reflect.DeepEqual(ds, got) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", ds, got)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "ds.json")

	ds := model.Dataset{
		{Name: "A. Kumar", Sons: model.Int(0), Daughters: model.Int(2)},
	}
	if err := SaveJSON(path, ds); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "A. Kumar" || *got[0].Daughters != 2 {
		t.Errorf("unexpected dataset: %+v", got)
	}
	if got[0].Sons == nil || *got[0].Sons != 0 {
		t.Error("zero counts must survive serialization distinct from unknown")
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	if _, err := Load("data.parquet"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func floatPtr(v float64) *float64 { return &v }
