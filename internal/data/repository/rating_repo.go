package repository

import (
	"context"
	"errors"
	"fmt"

	"store-rating/internal/data/entity"
	"store-rating/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *entity.Rating) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Rating, error)
	FindByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (*entity.Rating, error)
	FindByUserAndStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) ([]*entity.Rating, error)
	FindByStoreIDs(ctx context.Context, storeIDs []uuid.UUID) ([]*entity.Rating, error)
	FindByStoreID(ctx context.Context, storeID uuid.UUID, limit, offset int) ([]*entity.Rating, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Rating, error)
	ListAll(ctx context.Context) ([]*entity.Rating, error)
	CountByStoreID(ctx context.Context, storeID uuid.UUID) (int64, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, rating *entity.Rating) error

	// Bulk removal used by cascading deletes
	DeleteByStoreID(ctx context.Context, storeID uuid.UUID) (int64, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ratingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewRatingRepository(db database.Querier, log *zap.Logger) RatingRepository {
	return &ratingRepository{
		db:  db,
		log: log.With(zap.String("repository", "rating")),
	}
}

const ratingColumns = `id, user_id, store_id, rating, created_at, updated_at`

func scanRating(row pgx.Row) (*entity.Rating, error) {
	var rating entity.Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.StoreID,
		&rating.Rating,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Create inserts a rating. A second rating for the same user and store
// fails with ErrDuplicate.
func (r *ratingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	query := `
		INSERT INTO ratings (id, user_id, store_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		rating.ID,
		rating.UserID,
		rating.StoreID,
		rating.Rating,
		rating.CreatedAt,
		rating.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("create rating for store %s by user %s: %w",
			rating.StoreID.String(), rating.UserID.String(), ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create rating",
			zap.Error(err),
			zap.String("user_id", rating.UserID.String()),
			zap.String("store_id", rating.StoreID.String()),
		)
		return fmt.Errorf("create rating for store %s by user %s: %w",
			rating.StoreID.String(), rating.UserID.String(), err)
	}

	return nil
}

func (r *ratingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE id = $1`

	rating, err := scanRating(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find rating by ID",
			zap.Error(err),
			zap.String("rating_id", id.String()),
		)
		return nil, fmt.Errorf("find rating by ID %s: %w", id.String(), err)
	}

	return rating, nil
}

func (r *ratingRepository) FindByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (*entity.Rating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE user_id = $1 AND store_id = $2
		LIMIT 1
	`

	rating, err := scanRating(r.db.QueryRow(ctx, query, userID, storeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find rating by user and store",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("store_id", storeID.String()),
		)
		return nil, fmt.Errorf("find rating by user %s and store %s: %w",
			userID.String(), storeID.String(), err)
	}

	return rating, nil
}

func (r *ratingRepository) FindByUserAndStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) ([]*entity.Rating, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE user_id = $1 AND store_id = ANY($2)`

	rows, err := r.db.Query(ctx, query, userID, storeIDs)
	if err != nil {
		r.log.Error("Failed to find user ratings for stores",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find ratings by user %s for stores: %w", userID.String(), err)
	}
	return r.collect(rows)
}

// FindByStoreIDs returns every rating of the given stores, newest first.
func (r *ratingRepository) FindByStoreIDs(ctx context.Context, storeIDs []uuid.UUID) ([]*entity.Rating, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE store_id = ANY($1)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, storeIDs)
	if err != nil {
		r.log.Error("Failed to find ratings by store IDs", zap.Error(err), zap.Int("stores", len(storeIDs)))
		return nil, fmt.Errorf("find ratings by store IDs: %w", err)
	}
	return r.collect(rows)
}

func (r *ratingRepository) FindByStoreID(ctx context.Context, storeID uuid.UUID, limit, offset int) ([]*entity.Rating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE store_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, storeID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find ratings by store ID",
			zap.Error(err),
			zap.String("store_id", storeID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find ratings by store ID %s: %w", storeID.String(), err)
	}
	return r.collect(rows)
}

func (r *ratingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Rating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find ratings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find ratings by user ID %s: %w", userID.String(), err)
	}
	return r.collect(rows)
}

func (r *ratingRepository) ListAll(ctx context.Context) ([]*entity.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list ratings", zap.Error(err))
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return r.collect(rows)
}

func (r *ratingRepository) CountByStoreID(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ratings WHERE store_id = $1`, storeID)
}

func (r *ratingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ratings WHERE user_id = $1`, userID)
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ratings`)
}

// Update overwrites the value only; created_at is left alone.
func (r *ratingRepository) Update(ctx context.Context, rating *entity.Rating) error {
	query := `
		UPDATE ratings
		SET rating = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		rating.ID,
		rating.Rating,
		rating.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update rating",
			zap.Error(err),
			zap.String("rating_id", rating.ID.String()),
		)
		return fmt.Errorf("update rating %s: %w", rating.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update rating %s: %w", rating.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *ratingRepository) DeleteByStoreID(ctx context.Context, storeID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM ratings WHERE store_id = $1`, storeID)
	if err != nil {
		r.log.Error("Failed to delete ratings by store",
			zap.Error(err),
			zap.String("store_id", storeID.String()),
		)
		return 0, fmt.Errorf("delete ratings of store %s: %w", storeID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *ratingRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM ratings WHERE user_id = $1`, userID)
	if err != nil {
		r.log.Error("Failed to delete ratings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("delete ratings of user %s: %w", userID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *ratingRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count ratings", zap.Error(err))
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return count, nil
}

func (r *ratingRepository) collect(rows pgx.Rows) ([]*entity.Rating, error) {
	defer rows.Close()

	var ratings []*entity.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			r.log.Error("Failed to scan rating row", zap.Error(err))
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}

	return ratings, nil
}
