package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	ratio := 2.0
	ds := model.Dataset{
		{Name: "A. Kumar", Sons: model.Int(2), Daughters: model.Int(1),
			TotalChildren: model.Int(3), SexRatio: &ratio,
			Extra: map[string]string{"state": "Kerala"}},
		{Name: "B. Singh", Inferred: true},
		{Name: "C. Devi", Sons: model.Int(0), Daughters: model.Int(0), TotalChildren: model.Int(0)},
	}

	if err := s.SaveDataset("rajya_sabha", ds); err != nil {
		t.Fatalf("SaveDataset failed: %v", err)
	}

	got, err := s.LoadDataset("rajya_sabha")
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if !reflect.DeepEqual(ds, got) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", ds, got)
	}
}

func TestStore_Replace(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveDataset("x", model.Dataset{{Name: "old"}, {Name: "older"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDataset("x", model.Dataset{{Name: "new"}}); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadDataset("x")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "new" {
		t.Errorf("expected replacement, got %+v", got)
	}
}

func TestStore_MissingDataset(t *testing.T) {
	s := openTestStore(t)

	got, err := s.LoadDataset("never-saved")
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty dataset, got %+v", got)
	}
}

func TestStore_Datasets(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"b-source", "a-source"} {
		if err := s.SaveDataset(name, model.Dataset{{Name: "r"}}); err != nil {
			t.Fatal(err)
		}
	}

	names, err := s.Datasets()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a-source", "b-source"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Datasets() = %v, want %v", names, want)
	}
}
