package models

// DeltaRecord is the week-over-week movement for one tracked keyword.
// Prior and the percentage fields are nil in baseline mode (no prior
// snapshot, keyword absent from it, or prior value of zero).
type DeltaRecord struct {
	Keyword      string   `json:"keyword"`
	Current      float64  `json:"current"`
	Prior        *float64 `json:"prior,omitempty"`
	WoWPct       *float64 `json:"wow_pct,omitempty"`
	VsLastRunPct *float64 `json:"vs_last_run_pct,omitempty"`
}
