package entity

import (
	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Rating struct {
	Base
	UserID  uuid.UUID `db:"user_id"`
	StoreID uuid.UUID `db:"store_id"`
	Rating  int       `db:"rating"` // 1-5
}
