package tables

// TableResponse includes the resolved merge-group capacity alongside the
// table's own seating capacity.
type TableResponse struct {
	ID                uint   `json:"id"`
	Number            string `json:"number"`
	Capacity          int    `json:"capacity"`
	EffectiveCapacity int    `json:"effective_capacity"`
	MergedInto        *uint  `json:"merged_into,omitempty"`
}

func toTableResponse(t *Table, effectiveCapacity int) TableResponse {
	return TableResponse{
		ID:                t.ID,
		Number:            t.Number,
		Capacity:          t.Capacity,
		EffectiveCapacity: effectiveCapacity,
		MergedInto:        t.MergedInto,
	}
}
