package dto

// ImportRowRequest is one parsed spreadsheet row. Field-level validation is
// deliberately absent here: the reconciler reports missing fields per row
// instead of rejecting the whole batch.
type ImportRowRequest struct {
	Name    string `json:"name"`
	DNI     int64  `json:"dni"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	CanVote bool   `json:"can_vote"`
}

// ImportUsersRequest payload for bulk imports.
type ImportUsersRequest struct {
	ParentID string             `json:"parent_id" validate:"required"`
	Rows     []ImportRowRequest `json:"rows" validate:"required,min=1"`
}
