package repository

import (
	"context"
	"errors"
	"fmt"

	"store-rating/pkg/database"
	"store-rating/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrDuplicate is returned when an insert or update hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by writes that matched no row.
	ErrNotFound = errors.New("record not found")
)

const uniqueViolation = "23505"

type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	User   UserRepository
	Store  StoreRepository
	Rating RatingRepository

	db  txStarter
	log *zap.Logger
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.db = db
	return repo
}

func newRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:   NewUserRepository(q, log),
		Store:  NewStoreRepository(q, log),
		Rating: NewRatingRepository(q, log),
		log:    log,
	}
}

// WithinTx runs fn with repositories bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise. A
// Repository that is already transactional (or has no database behind it)
// runs fn directly.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(newRepository(tx, r.log)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// likePattern turns a search term into an ILIKE substring pattern.
func likePattern(term string) string {
	return "%" + utils.EscapeLike(term) + "%"
}
