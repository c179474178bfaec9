package tables

type CreateTableRequest struct {
	Number   string `json:"number" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

type UpdateTableRequest struct {
	Number   *string `json:"number" binding:"omitempty"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1"`
}

type MergeGroupRequest struct {
	TableIDs []uint `json:"table_ids" binding:"required,min=2"`
}
