package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"store-rating/internal/data/entity"
	"store-rating/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Store, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Store, error)
	FindByEmail(ctx context.Context, email string) (*entity.Store, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.Store, error)
	FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Store, error)
	ListAll(ctx context.Context) ([]*entity.Store, error)
	CountAll(ctx context.Context, search string) (int64, error)
	CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Update(ctx context.Context, store *entity.Store) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type storeRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewStoreRepository(db database.Querier, log *zap.Logger) StoreRepository {
	return &storeRepository{
		db:  db,
		log: log.With(zap.String("repository", "store")),
	}
}

const storeColumns = `id, name, email, address, owner_id, created_at, updated_at`

func scanStore(row pgx.Row) (*entity.Store, error) {
	var store entity.Store
	err := row.Scan(
		&store.ID,
		&store.Name,
		&store.Email,
		&store.Address,
		&store.OwnerID,
		&store.CreatedAt,
		&store.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) Create(ctx context.Context, store *entity.Store) error {
	query := `
		INSERT INTO stores (id, name, email, address, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		store.ID,
		store.Name,
		store.Email,
		store.Address,
		store.OwnerID,
		store.CreatedAt,
		store.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("create store %s: %w", store.Email, ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create store",
			zap.Error(err),
			zap.String("email", store.Email),
			zap.String("owner_id", store.OwnerID.String()),
		)
		return fmt.Errorf("create store %s: %w", store.Email, err)
	}

	return nil
}

func (r *storeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`

	store, err := scanStore(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find store by ID",
			zap.Error(err),
			zap.String("store_id", id.String()),
		)
		return nil, fmt.Errorf("find store by ID %s: %w", id.String(), err)
	}

	return store, nil
}

func (r *storeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Store, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find stores by IDs", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("find stores by IDs: %w", err)
	}
	return r.collect(rows)
}

func (r *storeRepository) FindByEmail(ctx context.Context, email string) (*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE LOWER(email) = LOWER($1)`

	store, err := scanStore(r.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find store by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find store by email %s: %w", email, err)
	}

	return store, nil
}

func (r *storeRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.Store, error) {
	query := `
		SELECT ` + storeColumns + `
		FROM stores
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.log.Error("Failed to find stores by owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return nil, fmt.Errorf("find stores by owner %s: %w", ownerID.String(), err)
	}
	return r.collect(rows)
}

// FindAll lists stores whose name or address contains search, ordered by
// name. An empty search lists everything.
func (r *storeRepository) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Store, error) {
	where, args := storeSearch(search)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM stores
		%s
		ORDER BY name ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, storeColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to get all stores",
			zap.Error(err),
			zap.String("search", search),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all stores limit %d offset %d: %w", limit, offset, err)
	}
	return r.collect(rows)
}

func (r *storeRepository) ListAll(ctx context.Context) ([]*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list stores", zap.Error(err))
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return r.collect(rows)
}

func (r *storeRepository) CountAll(ctx context.Context, search string) (int64, error) {
	where, args := storeSearch(search)
	query := `SELECT COUNT(*) FROM stores ` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count stores", zap.Error(err), zap.String("search", search))
		return 0, fmt.Errorf("count stores: %w", err)
	}

	return count, nil
}

func (r *storeRepository) CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM stores WHERE owner_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		r.log.Error("Failed to count stores by owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return 0, fmt.Errorf("count stores by owner %s: %w", ownerID.String(), err)
	}

	return count, nil
}

func (r *storeRepository) Update(ctx context.Context, store *entity.Store) error {
	query := `
		UPDATE stores
		SET name = $2, email = $3, address = $4, owner_id = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		store.ID,
		store.Name,
		store.Email,
		store.Address,
		store.OwnerID,
		store.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("update store %s: %w", store.ID.String(), ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to update store",
			zap.Error(err),
			zap.String("store_id", store.ID.String()),
		)
		return fmt.Errorf("update store %s: %w", store.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update store %s: %w", store.ID.String(), ErrNotFound)
	}

	return nil
}

// Delete removes the store row only. Its ratings must be removed first.
func (r *storeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM stores WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete store",
			zap.Error(err),
			zap.String("store_id", id.String()),
		)
		return fmt.Errorf("delete store %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete store %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Store deleted", zap.String("store_id", id.String()))
	return nil
}

func (r *storeRepository) collect(rows pgx.Rows) ([]*entity.Store, error) {
	defer rows.Close()

	var stores []*entity.Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			r.log.Error("Failed to scan store row", zap.Error(err))
			return nil, fmt.Errorf("scan store row: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store rows: %w", err)
	}

	return stores, nil
}

func storeSearch(search string) (string, []any) {
	s := strings.TrimSpace(search)
	if s == "" {
		return "", nil
	}
	return "WHERE (name ILIKE $1 OR address ILIKE $1)", []any{likePattern(s)}
}
