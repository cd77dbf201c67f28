package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/in-rolls/missing-daughters-of-pols/internal/checkpoint"
	"github.com/in-rolls/missing-daughters-of-pols/internal/fetch"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/validate"
)

// DefaultRajyaSabhaURL is the NIC biodata endpoint for current Rajya
// Sabha members, queried one member code at a time.
const DefaultRajyaSabhaURL = "https://rsdoc.nic.in/Memberweb/GetCurrentMember_Biodata"

const checkpointEvery = 100

// RajyaSabha collects family data by iterating member codes against the
// biodata API. The API reports counts either as digits or as words
// ("Two"); normalization handles both.
type RajyaSabha struct {
	session  *fetch.Session
	norm     *validate.Normalizer
	progress *checkpoint.Progress
	logf     Logf

	baseURL string
	startID int
	endID   int
}

// NewRajyaSabha creates the source for the [startID, endID] member code
// range. progress may be nil to disable resumability.
func NewRajyaSabha(session *fetch.Session, norm *validate.Normalizer, baseURL string, startID, endID int, progress *checkpoint.Progress, logf Logf) *RajyaSabha {
	if baseURL == "" {
		baseURL = DefaultRajyaSabhaURL
	}
	return &RajyaSabha{
		session:  session,
		norm:     norm,
		progress: progress,
		logf:     logf,
		baseURL:  baseURL,
		startID:  startID,
		endID:    endID,
	}
}

func (s *RajyaSabha) Name() string {
	return "rajya_sabha"
}

// rsBio mirrors the biodata API response. NO_SONS and NO_DAUGHTER stay
// untyped because the API mixes digits, words and empty strings.
type rsBio struct {
	Init      string `json:"MP_INIT"`
	FirstName string `json:"MP_FNAME"`
	LastName  string `json:"MP_LNAME"`
	Party     string `json:"PARTY_NAME"`
	State     string `json:"STATE_NAME"`
	Current   bool   `json:"MP_CURRENT"`
	Sons      any    `json:"NO_SONS"`
	Daughters any    `json:"NO_DAUGHTER"`
}

// Collect iterates the member code range, skipping codes that fail or
// are empty. Only the whole-range context cancellation aborts the run.
func (s *RajyaSabha) Collect(ctx context.Context) (model.Dataset, error) {
	var ds model.Dataset

	for code := s.startID; code <= s.endID; code++ {
		if err := ctx.Err(); err != nil {
			return ds, err
		}

		id := fmt.Sprintf("rs-%d", code)
		if s.progress != nil && s.progress.IsDone(id) {
			continue
		}

		rec, ok := s.collectOne(ctx, code, id)
		if ok {
			ds = append(ds, rec)
		}

		if s.progress != nil && (code-s.startID+1)%checkpointEvery == 0 {
			if err := s.progress.Save(); err != nil {
				s.log("checkpoint save failed: %v", err)
			}
		}
	}

	if s.progress != nil {
		if err := s.progress.Save(); err != nil {
			s.log("checkpoint save failed: %v", err)
		}
	}
	return ds, nil
}

func (s *RajyaSabha) collectOne(ctx context.Context, code int, id string) (model.Record, bool) {
	url := fmt.Sprintf("%s?mpcode=%d", s.baseURL, code)

	res, err := s.session.Get(ctx, url)
	if err != nil {
		s.log("member %d: %v", code, err)
		if s.progress != nil {
			s.progress.Fail(id, err.Error())
		}
		return model.Record{}, false
	}
	if !res.OK() {
		s.log("member %d: status %s", code, res.Status)
		if s.progress != nil {
			s.progress.Done(id) // not a member, nothing to retry
		}
		return model.Record{}, false
	}

	var bios []rsBio
	if err := json.Unmarshal(res.Body, &bios); err != nil || len(bios) == 0 {
		if s.progress != nil {
			s.progress.Done(id)
		}
		return model.Record{}, false
	}

	bio := bios[0]
	if !bio.Current {
		if s.progress != nil {
			s.progress.Done(id)
		}
		return model.Record{}, false
	}

	name := joinName(bio.Init, bio.FirstName, bio.LastName)
	if name == "" {
		if s.progress != nil {
			s.progress.Done(id)
		}
		return model.Record{}, false
	}

	extra := map[string]string{"member_code": fmt.Sprintf("%d", code)}
	if p := strings.TrimSpace(bio.Party); p != "" {
		extra["party"] = p
	}
	if st := strings.TrimSpace(bio.State); st != "" {
		extra["state"] = st
	}

	rec := s.norm.Build(name, bio.Sons, bio.Daughters, extra)
	if s.progress != nil {
		s.progress.Done(id)
	}
	return rec, true
}

func (s *RajyaSabha) log(format string, args ...any) {
	if s.logf != nil {
		s.logf(format, args...)
	}
}

func joinName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
