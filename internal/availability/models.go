package availability

// CandidateTable is a table that satisfies the capacity and time-window
// constraints of an availability query.
type CandidateTable struct {
	TableID           uint   `json:"table_id"`
	Number            string `json:"number"`
	Capacity          int    `json:"capacity"`
	EffectiveCapacity int    `json:"effective_capacity"`
}

// Result is derived, never persisted. Candidates are ordered by ascending
// effective capacity (tightest fit first) to bias toward efficient packing.
type Result struct {
	HasAvailability bool             `json:"has_availability"`
	AvailableTables []CandidateTable `json:"available_tables"`
}
