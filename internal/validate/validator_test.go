package validate

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

func TestNormalizer_Field(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *int
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"blank string", "  ", nil},
		{"int", 2, model.Int(2)},
		{"zero", 0, model.Int(0)},
		{"numeric string", "2", model.Int(2)},
		{"padded numeric string", " 3 ", model.Int(3)},
		{"number word", "two", model.Int(2)},
		{"capitalized word", "Two", model.Int(2)},
		{"json number", float64(4), model.Int(4)},
		{"negative int", -1, nil},
		{"negative string", "-2", nil},
		{"fractional", 1.5, nil},
		{"garbage", "unknown", nil},
		{"wrong type", []string{"2"}, nil},
	}

	n := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Field("sons", tt.raw)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Field(%v) = %v, want %v", tt.raw, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Field(%v) = %d, want %d", tt.raw, *got, *tt.want)
			}
		})
	}
}

func TestNormalizer_FieldWarnings(t *testing.T) {
	var warnings []string
	n := New(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	n.Field("sons", "not-a-number")
	n.Field("daughters", -3)
	n.Field("sons", nil) // unknown is not a warning
	n.Field("sons", "")

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestNormalizer_Build(t *testing.T) {
	n := New(nil)

	rec := n.Build("A. B. Example", "2", 1, nil)
	if rec.Sons == nil || *rec.Sons != 2 {
		t.Errorf("sons: got %v", rec.Sons)
	}
	if rec.Daughters == nil || *rec.Daughters != 1 {
		t.Errorf("daughters: got %v", rec.Daughters)
	}
	if rec.TotalChildren == nil || *rec.TotalChildren != 3 {
		t.Errorf("total_children: got %v", rec.TotalChildren)
	}
	if rec.SexRatio == nil || *rec.SexRatio != 2.0 {
		t.Errorf("sex_ratio: got %v", rec.SexRatio)
	}
}

func TestNormalizer_BuildUnknown(t *testing.T) {
	n := New(nil)

	rec := n.Build("C. D. Example", "", nil, nil)
	if rec.Sons != nil || rec.Daughters != nil {
		t.Errorf("expected unknown counts, got %+v", rec)
	}
	if rec.TotalChildren != nil {
		t.Error("total_children must stay unset for incomplete records")
	}
	if rec.SexRatio != nil {
		t.Error("sex_ratio must stay unset for incomplete records")
	}
}

func TestNormalizer_ZeroDaughters(t *testing.T) {
	n := New(nil)

	rec := n.Build("E. F. Example", 3, 0, nil)
	if rec.TotalChildren == nil || *rec.TotalChildren != 3 {
		t.Errorf("total_children: got %v", rec.TotalChildren)
	}
	if rec.SexRatio != nil {
		t.Error("sex_ratio must be absent when daughters is zero, not infinite")
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := New(nil)

	inputs := []model.Record{
		{Name: "a", Sons: model.Int(2), Daughters: model.Int(1)},
		{Name: "b", Sons: model.Int(0), Daughters: model.Int(0)},
		{Name: "c"},
		{Name: "d", Daughters: model.Int(4), Extra: map[string]string{"state": "Kerala"}},
		// Stale derived fields get recomputed, not trusted.
		{Name: "e", Sons: model.Int(1), Daughters: model.Int(1), TotalChildren: model.Int(9)},
	}

	for _, in := range inputs {
		once := n.Record(in)
		twice := n.Record(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("%s: not idempotent: %+v vs %+v", in.Name, once, twice)
		}
	}
}

func TestNormalizer_StaleDerivedFields(t *testing.T) {
	n := New(nil)

	rec := n.Record(model.Record{Name: "x", Sons: model.Int(1), TotalChildren: model.Int(5)})
	if rec.TotalChildren != nil {
		t.Error("incomplete record must not keep a stale total")
	}

	rec = n.Record(model.Record{Name: "y", Sons: model.Int(1), Daughters: model.Int(1), TotalChildren: model.Int(5)})
	if rec.TotalChildren == nil || *rec.TotalChildren != 2 {
		t.Errorf("expected recomputed total 2, got %v", rec.TotalChildren)
	}
}

func TestNormalizer_Dataset(t *testing.T) {
	n := New(nil)

	ds := model.Dataset{
		{Name: "a", Sons: model.Int(2), Daughters: model.Int(2)},
		{Name: "b"},
	}
	out := n.Dataset(ds)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].TotalChildren == nil || *out[0].TotalChildren != 4 {
		t.Errorf("expected total 4, got %v", out[0].TotalChildren)
	}
	// Inputs are not mutated.
	if ds[0].TotalChildren != nil {
		t.Error("input dataset must not be mutated")
	}
}
