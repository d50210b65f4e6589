// Package ledger owns rating writes and keeps at most one rating per user
// and store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Ledger struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func New(repo *repository.Repository, log *zap.Logger) *Ledger {
	return &Ledger{
		repo: repo,
		log:  log.With(zap.String("component", "ledger")),
		now:  time.Now,
	}
}

// WithRepo returns a Ledger writing through repo, typically the
// transactional Repository handed out by WithinTx.
func (l *Ledger) WithRepo(repo *repository.Repository) *Ledger {
	clone := *l
	clone.repo = repo
	return &clone
}

func validValue(value int) error {
	if value < entity.MinRating || value > entity.MaxRating {
		msg := fmt.Sprintf("Rating must be between %d and %d", entity.MinRating, entity.MaxRating)
		return apperr.Validation(msg, map[string]string{"rating": msg})
	}
	return nil
}

// Submit records a new rating of storeID by userID.
func (l *Ledger) Submit(ctx context.Context, userID, storeID uuid.UUID, value int) (*entity.Rating, error) {
	if err := validValue(value); err != nil {
		return nil, err
	}

	store, err := l.repo.Store.FindByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("find store: %w", err)
	}
	if store == nil {
		return nil, apperr.NotFound("store not found")
	}

	existing, err := l.repo.Rating.FindByUserAndStore(ctx, userID, storeID)
	if err != nil {
		return nil, fmt.Errorf("check existing rating: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("you have already rated this store")
	}

	now := l.now()
	rating := &entity.Rating{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:  userID,
		StoreID: storeID,
		Rating:  value,
	}

	// a concurrent submit can still win between the check and the insert
	if err := l.repo.Rating.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("you have already rated this store")
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}

	l.log.Info("Rating submitted",
		zap.String("rating_id", rating.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("store_id", storeID.String()),
		zap.Int("rating", value),
	)

	return rating, nil
}

// Update overwrites the value of a rating owned by requesterID. Ratings of
// other users are reported as not found.
func (l *Ledger) Update(ctx context.Context, ratingID, requesterID uuid.UUID, value int) (*entity.Rating, error) {
	if err := validValue(value); err != nil {
		return nil, err
	}

	rating, err := l.repo.Rating.FindByID(ctx, ratingID)
	if err != nil {
		return nil, fmt.Errorf("find rating: %w", err)
	}
	if rating == nil || rating.UserID != requesterID {
		return nil, apperr.NotFound("rating not found")
	}

	rating.Rating = value
	rating.UpdatedAt = l.now()

	if err := l.repo.Rating.Update(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("rating not found")
		}
		return nil, fmt.Errorf("update rating: %w", err)
	}

	l.log.Info("Rating updated",
		zap.String("rating_id", ratingID.String()),
		zap.String("user_id", requesterID.String()),
		zap.Int("rating", value),
	)

	return rating, nil
}

// DeleteForStore removes every rating of storeID and reports how many were
// removed. Running it twice is harmless.
func (l *Ledger) DeleteForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	n, err := l.repo.Rating.DeleteByStoreID(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("delete ratings for store: %w", err)
	}
	l.log.Debug("Ratings removed for store", zap.String("store_id", storeID.String()), zap.Int64("count", n))
	return n, nil
}

func (l *Ledger) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := l.repo.Rating.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete ratings for user: %w", err)
	}
	l.log.Debug("Ratings removed for user", zap.String("user_id", userID.String()), zap.Int64("count", n))
	return n, nil
}
