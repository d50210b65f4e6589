package request

// Rating range is enforced by the ledger so every entry point reports it
// the same way.
type SubmitRatingRequest struct {
	StoreID string `json:"store_id" validate:"required,uuid"`
	Rating  int    `json:"rating"`
}

type UpdateRatingRequest struct {
	Rating int `json:"rating"`
}
