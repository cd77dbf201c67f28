package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/in-rolls/missing-daughters-of-pols/internal/checkpoint"
	"github.com/in-rolls/missing-daughters-of-pols/internal/fetch"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/validate"
)

func testSession() *fetch.Session {
	return fetch.NewSession(model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "test/1.0",
		MaxBodyBytes: 1 << 20,
		Delay:        time.Millisecond,
		MaxRetries:   1,
	})
}

func rsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("mpcode") {
		case "1":
			fmt.Fprint(w, `[{"MP_FNAME":"Asha","MP_LNAME":"Devi","PARTY_NAME":"INC","STATE_NAME":"Kerala","MP_CURRENT":true,"NO_SONS":"2","NO_DAUGHTER":"1"}]`)
		case "2":
			fmt.Fprint(w, `[{"MP_INIT":"Dr.","MP_FNAME":"Ravi","MP_LNAME":"Kumar","MP_CURRENT":true,"NO_SONS":"Two","NO_DAUGHTER":"One"}]`)
		case "3":
			fmt.Fprint(w, `[]`)
		case "4":
			fmt.Fprint(w, `[{"MP_FNAME":"Former","MP_LNAME":"Member","MP_CURRENT":false,"NO_SONS":"1","NO_DAUGHTER":"1"}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func TestRajyaSabha_Collect(t *testing.T) {
	srv := rsServer(t)
	defer srv.Close()

	src := NewRajyaSabha(testSession(), validate.New(nil), srv.URL, 1, 5, nil, nil)
	ds, err := src.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(ds) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(ds), ds)
	}

	rec := ds[0]
	if rec.Name != "Asha Devi" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Sons == nil || *rec.Sons != 2 || rec.Daughters == nil || *rec.Daughters != 1 {
		t.Errorf("counts = %v/%v", rec.Sons, rec.Daughters)
	}
	if rec.TotalChildren == nil || *rec.TotalChildren != 3 {
		t.Errorf("total_children = %v", rec.TotalChildren)
	}
	if rec.Extra["party"] != "INC" || rec.Extra["state"] != "Kerala" {
		t.Errorf("extra = %v", rec.Extra)
	}

	// Number-word counts from the API normalize like digits.
	rec = ds[1]
	if rec.Name != "Dr. Ravi Kumar" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Sons == nil || *rec.Sons != 2 || rec.Daughters == nil || *rec.Daughters != 1 {
		t.Errorf("word counts = %v/%v", rec.Sons, rec.Daughters)
	}
}

func TestRajyaSabha_Resume(t *testing.T) {
	srv := rsServer(t)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "progress.json")
	progress, err := checkpoint.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	progress.Done("rs-1") // pretend a previous run finished member 1

	src := NewRajyaSabha(testSession(), validate.New(nil), srv.URL, 1, 4, progress, nil)
	ds, err := src.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(ds) != 1 || ds[0].Name != "Dr. Ravi Kumar" {
		t.Fatalf("expected only unfinished members, got %+v", ds)
	}

	// Progress file was written and covers the whole range.
	reloaded, err := checkpoint.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"rs-1", "rs-2", "rs-3", "rs-4"} {
		if !reloaded.IsDone(id) {
			t.Errorf("%s should be done after the run", id)
		}
	}
}

func TestRajyaSabha_ServerErrorsSkipped(t *testing.T) {
	srv := rsServer(t)
	defer srv.Close()

	var logged []string
	logf := func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}

	// Range covers only the failing code: no data, no error.
	src := NewRajyaSabha(testSession(), validate.New(nil), srv.URL, 5, 5, nil, logf)
	ds, err := src.Collect(context.Background())
	if err != nil {
		t.Fatalf("failures must be absorbed, got %v", err)
	}
	if len(ds) != 0 {
		t.Errorf("expected empty dataset, got %+v", ds)
	}
	if len(logged) == 0 {
		t.Error("expected a skip log line")
	}
}
