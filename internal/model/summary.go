package model

// Summary is an immutable snapshot of descriptive statistics computed
// over the complete records of one dataset. Regenerated on demand,
// never mutated in place.
type Summary struct {
	NPoliticians  int `json:"n_politicians"`
	TotalSons     int `json:"total_sons"`
	TotalDaughters int `json:"total_daughters"`
	TotalChildren int `json:"total_children"`

	// SexRatio is total sons / total daughters, omitted when no
	// daughters were counted. ProportionDaughters is total daughters /
	// total children, omitted when no children were counted.
	SexRatio            *float64 `json:"sex_ratio,omitempty"`
	ProportionDaughters *float64 `json:"proportion_daughters,omitempty"`

	MeanSons          float64 `json:"mean_sons"`
	MeanDaughters     float64 `json:"mean_daughters"`
	MeanTotalChildren float64 `json:"mean_total_children"`
}
