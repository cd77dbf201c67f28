package validate

import (
	"strconv"
	"strings"

	"github.com/in-rolls/missing-daughters-of-pols/internal/extract"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

// Warnf receives non-fatal normalization warnings. A nil Warnf is
// silent. Malformed values never abort processing; they normalize to
// unknown.
type Warnf func(format string, args ...any)

// Normalizer coerces heterogeneous raw field values into canonical
// counts and derives total_children and sex_ratio.
type Normalizer struct {
	warnf Warnf
}

// New creates a normalizer. warnf may be nil.
func New(warnf Warnf) *Normalizer {
	return &Normalizer{warnf: warnf}
}

// Field coerces a raw sons/daughters value to a count. Accepted forms:
// nil, empty string (unknown), integers, whole floats (JSON numbers),
// numeric strings, and spelled-out number words ("Two"). Negative
// counts and unrecognized strings normalize to unknown with a warning.
func (n *Normalizer) Field(name string, raw any) *int {
	switch v := raw.(type) {
	case nil:
		return nil
	case *int:
		if v == nil {
			return nil
		}
		return n.checked(name, *v)
	case int:
		return n.checked(name, v)
	case int64:
		return n.checked(name, int(v))
	case float64:
		if v != float64(int(v)) {
			n.warn("invalid %s value: %v", name, v)
			return nil
		}
		return n.checked(name, int(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if i, err := strconv.Atoi(s); err == nil {
			return n.checked(name, i)
		}
		if i, ok := extract.NumberWord(s); ok {
			return n.checked(name, i)
		}
		n.warn("invalid %s value: %q", name, v)
		return nil
	default:
		n.warn("invalid %s value of type %T: %v", name, raw, raw)
		return nil
	}
}

// Record normalizes the count fields of a record and recomputes the
// derived fields. Derived fields from a previous pass are discarded
// first, so Record(Record(r)) == Record(r).
func (n *Normalizer) Record(rec model.Record) model.Record {
	out := rec.Clone()
	out.Sons = n.Field("sons", out.Sons)
	out.Daughters = n.Field("daughters", out.Daughters)
	out.TotalChildren = nil
	out.SexRatio = nil

	if out.Sons != nil && out.Daughters != nil {
		total := *out.Sons + *out.Daughters
		out.TotalChildren = &total
		if *out.Daughters > 0 {
			ratio := float64(*out.Sons) / float64(*out.Daughters)
			out.SexRatio = &ratio
		}
	}

	return out
}

// Build assembles and normalizes a record from raw source values.
func (n *Normalizer) Build(name string, sons, daughters any, extra map[string]string) model.Record {
	return n.Record(model.Record{
		Name:      name,
		Sons:      n.Field("sons", sons),
		Daughters: n.Field("daughters", daughters),
		Extra:     extra,
	})
}

// Dataset normalizes every record of a dataset, returning a new one.
func (n *Normalizer) Dataset(ds model.Dataset) model.Dataset {
	out := make(model.Dataset, 0, len(ds))
	for _, rec := range ds {
		out = append(out, n.Record(rec))
	}
	return out
}

func (n *Normalizer) checked(name string, v int) *int {
	if v < 0 {
		n.warn("negative %s count: %d", name, v)
		return nil
	}
	return &v
}

func (n *Normalizer) warn(format string, args ...any) {
	if n.warnf != nil {
		n.warnf(format, args...)
	}
}
