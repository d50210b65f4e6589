package response

type AdminDashboardResponse struct {
	TotalUsers    int64            `json:"total_users"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
	TotalStores   int64            `json:"total_stores"`
	TotalRatings  int64            `json:"total_ratings"`
	AverageRating float64          `json:"average_rating"`
	Distribution  map[int]int      `json:"distribution"`
	RecentRatings []RatingResponse `json:"recent_ratings"`
}

type OwnerDashboardResponse struct {
	TotalStores   int                  `json:"total_stores"`
	TotalRatings  int                  `json:"total_ratings"`
	AverageRating float64              `json:"average_rating"`
	Stores        []StoreStatsResponse `json:"stores"`
	RecentRatings []RatingResponse     `json:"recent_ratings"`
}
