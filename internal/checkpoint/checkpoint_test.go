package checkpoint

import (
	"path/filepath"
	"testing"
)

func TestProgress_MissingFile(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(p.Completed) != 0 || len(p.Failed) != 0 {
		t.Errorf("expected empty progress, got %+v", p)
	}
	if p.IsDone("anything") {
		t.Error("nothing should be done yet")
	}
}

func TestProgress_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p.Done("kerala-2021")
	p.Done("kerala-2021") // idempotent
	p.Fail("rajasthan-2018", "timeout after 3 attempts")
	if err := p.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p2, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !p2.IsDone("kerala-2021") {
		t.Error("completed unit lost across reload")
	}
	if p2.IsDone("rajasthan-2018") {
		t.Error("failed unit must not count as done")
	}
	if len(p2.Completed) != 1 {
		t.Errorf("completed = %v", p2.Completed)
	}
	if len(p2.Failed) != 1 || p2.Failed[0].Reason != "timeout after 3 attempts" {
		t.Errorf("failed = %+v", p2.Failed)
	}
	if p2.LastUpdated == nil {
		t.Error("last_updated must be stamped on save")
	}
}
