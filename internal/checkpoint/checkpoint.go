package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Failure records one failed unit of work.
type Failure struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Progress tracks which units of work (states, member IDs, pages) a
// collection run has finished, so an interrupted run can resume and
// skip completed ones. Persisted as JSON after each unit.
type Progress struct {
	Completed   []string   `json:"completed"`
	Failed      []Failure  `json:"failed"`
	LastUpdated *time.Time `json:"last_updated"`

	path string
	done map[string]bool
}

// Load reads progress from path. A missing file yields empty progress,
// not an error.
func Load(path string) (*Progress, error) {
	p := &Progress{path: path, done: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	for _, id := range p.Completed {
		p.done[id] = true
	}
	return p, nil
}

// Save writes progress back to its file, stamping last_updated.
func (p *Progress) Save() error {
	now := time.Now().UTC()
	p.LastUpdated = &now

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Done marks a unit completed.
func (p *Progress) Done(id string) {
	if p.done[id] {
		return
	}
	p.done[id] = true
	p.Completed = append(p.Completed, id)
}

// Fail records a failed unit with its reason.
func (p *Progress) Fail(id, reason string) {
	p.Failed = append(p.Failed, Failure{
		ID:        id,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}

// IsDone reports whether a unit was already completed.
func (p *Progress) IsDone(id string) bool {
	return p.done[id]
}
