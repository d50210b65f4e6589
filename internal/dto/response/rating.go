package response

import (
	"time"

	"store-rating/internal/aggregate"
	"store-rating/internal/data/entity"

	"github.com/google/uuid"
)

type RatingResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	UserEmail    string    `json:"user_email,omitempty"`
	StoreID      string    `json:"store_id"`
	StoreName    string    `json:"store_name,omitempty"`
	StoreAddress *string   `json:"store_address,omitempty"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func RatingToResponse(rating *entity.Rating) RatingResponse {
	return RatingResponse{
		ID:        rating.ID.String(),
		UserID:    rating.UserID.String(),
		StoreID:   rating.StoreID.String(),
		Rating:    rating.Rating,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	}
}

// WithUser fills the rater columns when the user is known.
func (r RatingResponse) WithUser(user *entity.User) RatingResponse {
	if user != nil {
		r.UserName = user.Name
		r.UserEmail = user.Email
	}
	return r
}

func (r RatingResponse) WithStore(store *entity.Store) RatingResponse {
	if store != nil {
		r.StoreName = store.Name
		r.StoreAddress = store.Address
	}
	return r
}

// FeedToResponse converts a recent feed, attaching rater details from users.
func FeedToResponse(items []aggregate.FeedItem, users map[uuid.UUID]*entity.User) []RatingResponse {
	out := make([]RatingResponse, 0, len(items))
	for _, item := range items {
		resp := RatingToResponse(item.Rating).WithUser(users[item.Rating.UserID])
		resp.StoreName = item.StoreName
		out = append(out, resp)
	}
	return out
}
