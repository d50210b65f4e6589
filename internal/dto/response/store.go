package response

import (
	"time"

	"store-rating/internal/aggregate"
	"store-rating/internal/data/entity"
)

type StoreResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       *string   `json:"address,omitempty"`
	OwnerID       string    `json:"owner_id"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	MyRating      *int      `json:"my_rating,omitempty"`
	MyRatingID    *string   `json:"my_rating_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type OwnerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type StoreDetailResponse struct {
	StoreResponse
	Owner         *OwnerInfo       `json:"owner,omitempty"`
	Distribution  map[int]int      `json:"distribution"`
	RecentRatings []RatingResponse `json:"recent_ratings,omitempty"`
}

type StoreStatsResponse struct {
	StoreID       string      `json:"store_id"`
	StoreName     string      `json:"store_name"`
	TotalRatings  int         `json:"total_ratings"`
	AverageRating float64     `json:"average_rating"`
	Distribution  map[int]int `json:"distribution"`
}

// StoreRatingsResponse is one page of a store's ratings. The average and
// total cover every rating of the store, not just the page.
type StoreRatingsResponse struct {
	StoreID       string           `json:"store_id"`
	StoreName     string           `json:"store_name"`
	AverageRating float64          `json:"average_rating"`
	TotalRatings  int64            `json:"total_ratings"`
	Ratings       []RatingResponse `json:"ratings"`
	Pagination    PaginationMeta   `json:"pagination"`
}

func StoreToResponse(store *entity.Store, summary aggregate.StoreSummary) StoreResponse {
	return StoreResponse{
		ID:            store.ID.String(),
		Name:          store.Name,
		Email:         store.Email,
		Address:       store.Address,
		OwnerID:       store.OwnerID.String(),
		AverageRating: aggregate.Round1(summary.Average),
		TotalRatings:  summary.TotalRatings,
		CreatedAt:     store.CreatedAt,
	}
}

func StoreStatsToResponse(summary aggregate.StoreSummary) StoreStatsResponse {
	return StoreStatsResponse{
		StoreID:       summary.StoreID.String(),
		StoreName:     summary.StoreName,
		TotalRatings:  summary.TotalRatings,
		AverageRating: aggregate.Round1(summary.Average),
		Distribution:  summary.Distribution,
	}
}
