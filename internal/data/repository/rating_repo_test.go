package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"store-rating/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRatingRepository_CreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRatingRepository(mock, zap.NewNop())

	now := time.Now()
	rating := &entity.Rating{
		Base:    entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:  uuid.New(),
		StoreID: uuid.New(),
		Rating:  4,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings")).
		WithArgs(rating.ID, rating.UserID, rating.StoreID, rating.Rating, rating.CreatedAt, rating.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_ratings_user_store"})

	err := repo.Create(context.Background(), rating)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_CreateOtherError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRatingRepository(mock, zap.NewNop())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &entity.Rating{Rating: 3})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicate))
}

func TestRatingRepository_FindByIDNoRows(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRatingRepository(mock, zap.NewNop())
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM ratings WHERE id = $1")).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	rating, err := repo.FindByID(context.Background(), id)

	require.NoError(t, err)
	assert.Nil(t, rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_UpdateMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRatingRepository(mock, zap.NewNop())
	rating := &entity.Rating{Base: entity.Base{ID: uuid.New(), UpdatedAt: time.Now()}, Rating: 2}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings")).
		WithArgs(rating.ID, 2, rating.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), rating)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_DeleteByStoreID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRatingRepository(mock, zap.NewNop())
	storeID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ratings WHERE store_id = $1")).
		WithArgs(storeID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ratings WHERE store_id = $1")).
		WithArgs(storeID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	n, err := repo.DeleteByStoreID(context.Background(), storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// second call finds nothing left
	n, err = repo.DeleteByStoreID(context.Background(), storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_CountByStoreID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRatingRepository(mock, zap.NewNop())
	storeID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM ratings WHERE store_id = $1")).
		WithArgs(storeID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.CountByStoreID(context.Background(), storeID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_EmptyStoreIDs(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRatingRepository(mock, zap.NewNop())

	ratings, err := repo.FindByStoreIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, ratings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewestFirstQueriesBreakTiesByID(t *testing.T) {
	mock := newMockPool(t)
	ratings := NewRatingRepository(mock, zap.NewNop())
	users := NewUserRepository(mock, zap.NewNop())
	ctx := context.Background()
	storeID, userID := uuid.New(), uuid.New()

	empty := func() *pgxmock.Rows {
		return pgxmock.NewRows([]string{"id", "user_id", "store_id", "rating", "created_at", "updated_at"})
	}
	order := regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")

	mock.ExpectQuery(order).WithArgs(storeID, 10, 0).WillReturnRows(empty())
	mock.ExpectQuery(order).WithArgs(userID, 10, 0).WillReturnRows(empty())
	mock.ExpectQuery(order).WillReturnRows(empty())
	mock.ExpectQuery(order).WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password", "role", "address", "created_at", "updated_at"}))

	_, err := ratings.FindByStoreID(ctx, storeID, 10, 0)
	require.NoError(t, err)
	_, err = ratings.FindByUserID(ctx, userID, 10, 0)
	require.NoError(t, err)
	_, err = ratings.ListAll(ctx)
	require.NoError(t, err)
	_, err = users.FindAll(ctx, UserFilter{}, 10, 0)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
