package model

// Record holds biographical family data for one politician.
// Sons and daughters are pointers because "unknown" is a common and
// valid state distinct from zero.
type Record struct {
	Name          string   `json:"name"`
	Sons          *int     `json:"sons,omitempty"`
	Daughters     *int     `json:"daughters,omitempty"`
	TotalChildren *int     `json:"total_children,omitempty"` // derived: sons + daughters
	SexRatio      *float64 `json:"sex_ratio,omitempty"`      // derived: sons / daughters, only when daughters > 0
	Inferred      bool     `json:"inferred,omitempty"`       // counts inferred from phrasing, not stated explicitly

	// Extra carries passthrough columns (party, state, constituency,
	// year, source metadata). Keys vary per source.
	Extra map[string]string `json:"extra,omitempty"`
}

// Complete reports whether both child counts are known.
func (r Record) Complete() bool {
	return r.Sons != nil && r.Daughters != nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Sons != nil {
		v := *r.Sons
		out.Sons = &v
	}
	if r.Daughters != nil {
		v := *r.Daughters
		out.Daughters = &v
	}
	if r.TotalChildren != nil {
		v := *r.TotalChildren
		out.TotalChildren = &v
	}
	if r.SexRatio != nil {
		v := *r.SexRatio
		out.SexRatio = &v
	}
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Dataset is an ordered collection of records sharing a schema superset.
// It is a value type; operations return new datasets instead of mutating.
type Dataset []Record

// Complete returns the subset of records with both counts known,
// preserving order.
func (d Dataset) Complete() Dataset {
	var out Dataset
	for _, r := range d {
		if r.Complete() {
			out = append(out, r)
		}
	}
	return out
}

// Int returns a pointer to v. Convenience for building records.
func Int(v int) *int {
	return &v
}
