package response

// AdminUserResponse is a user row as administrators see it. Owners carry
// the pooled average over all of their stores.
type AdminUserResponse struct {
	UserResponse
	AverageRating *float64 `json:"average_rating,omitempty"`
	TotalStores   *int     `json:"total_stores,omitempty"`
}

type UserDetailResponse struct {
	AdminUserResponse
	Stores []StoreStatsResponse `json:"stores,omitempty"`
}
