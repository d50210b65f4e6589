// Package repotest provides an in-memory Repository for tests. It keeps the
// uniqueness rules of the real schema (user email, store email and one
// rating per user and store) and the orderings of the pgx queries.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"

	"github.com/google/uuid"
)

type db struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]entity.User
	stores  map[uuid.UUID]entity.Store
	ratings map[uuid.UUID]entity.Rating
}

// New returns a Repository backed by empty in-memory tables. WithinTx runs
// its function directly, without rollback.
func New() *repository.Repository {
	d := &db{
		users:   make(map[uuid.UUID]entity.User),
		stores:  make(map[uuid.UUID]entity.Store),
		ratings: make(map[uuid.UUID]entity.Rating),
	}
	return &repository.Repository{
		User:   &userRepo{d},
		Store:  &storeRepo{d},
		Rating: &ratingRepo{d},
	}
}

func contains(field *string, term string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), term)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// newestFirst mirrors ORDER BY created_at DESC, id DESC.
func newestFirst(a, b entity.Base) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ==================== USERS ====================

type userRepo struct{ *db }

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, uuid.Nil) {
		return fmt.Errorf("create user %s: %w", user.Email, repository.ErrDuplicate)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range r.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.User
	for id := range idSet(ids) {
		if u, ok := r.users[id]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) filtered(filter repository.UserFilter) []*entity.User {
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	var out []*entity.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if term != "" && !contains(&u.Name, term) && !contains(&u.Email, term) && !contains(u.Address, term) {
			continue
		}
		out = append(out, &u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newestFirst(out[i].Base, out[j].Base)
	})
	return out
}

func (r *userRepo) FindAll(_ context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return page(r.filtered(filter), limit, offset), nil
}

func (r *userRepo) CountAll(_ context.Context, filter repository.UserFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.filtered(filter))), nil
}

func (r *userRepo) CountByRole(_ context.Context) (map[entity.Role]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[entity.Role]int64{entity.RoleUser: 0, entity.RoleOwner: 0, entity.RoleAdmin: 0}
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *userRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("update user %s: %w", user.ID, repository.ErrNotFound)
	}
	if r.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("update user %s: %w", user.ID, repository.ErrDuplicate)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("delete user %s: %w", id, repository.ErrNotFound)
	}
	for _, s := range r.stores {
		if s.OwnerID == id {
			return fmt.Errorf("delete user %s: still owns store %s", id, s.ID)
		}
	}
	for _, rt := range r.ratings {
		if rt.UserID == id {
			return fmt.Errorf("delete user %s: still has rating %s", id, rt.ID)
		}
	}
	delete(r.users, id)
	return nil
}

// ==================== STORES ====================

type storeRepo struct{ *db }

func (r *storeRepo) emailTaken(email string, except uuid.UUID) bool {
	for id, s := range r.stores {
		if id != except && strings.EqualFold(s.Email, email) {
			return true
		}
	}
	return false
}

func (r *storeRepo) Create(_ context.Context, store *entity.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(store.Email, uuid.Nil) {
		return fmt.Errorf("create store %s: %w", store.Email, repository.ErrDuplicate)
	}
	if _, ok := r.users[store.OwnerID]; !ok {
		return fmt.Errorf("create store %s: owner %s does not exist", store.Email, store.OwnerID)
	}
	r.stores[store.ID] = *store
	return nil
}

func (r *storeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *storeRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Store
	for id := range idSet(ids) {
		if s, ok := r.stores[id]; ok {
			out = append(out, &s)
		}
	}
	return sortStores(out), nil
}

func (r *storeRepo) FindByEmail(_ context.Context, email string) (*entity.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stores {
		if strings.EqualFold(s.Email, email) {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *storeRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*entity.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Store
	for _, s := range r.stores {
		if s.OwnerID == ownerID {
			out = append(out, &s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newestFirst(out[i].Base, out[j].Base)
	})
	return out, nil
}

func (r *storeRepo) search(term string) []*entity.Store {
	term = strings.ToLower(strings.TrimSpace(term))

	var out []*entity.Store
	for _, s := range r.stores {
		if term != "" && !contains(&s.Name, term) && !contains(s.Address, term) {
			continue
		}
		out = append(out, &s)
	}
	return sortStores(out)
}

func (r *storeRepo) FindAll(_ context.Context, search string, limit, offset int) ([]*entity.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return page(r.search(search), limit, offset), nil
}

func (r *storeRepo) ListAll(_ context.Context) ([]*entity.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.search(""), nil
}

func (r *storeRepo) CountAll(_ context.Context, search string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.search(search))), nil
}

func (r *storeRepo) CountByOwnerID(_ context.Context, ownerID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.stores {
		if s.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *storeRepo) Update(_ context.Context, store *entity.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[store.ID]; !ok {
		return fmt.Errorf("update store %s: %w", store.ID, repository.ErrNotFound)
	}
	if r.emailTaken(store.Email, store.ID) {
		return fmt.Errorf("update store %s: %w", store.ID, repository.ErrDuplicate)
	}
	r.stores[store.ID] = *store
	return nil
}

// Delete fails while ratings still reference the store, like the foreign
// key in the real schema.
func (r *storeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[id]; !ok {
		return fmt.Errorf("delete store %s: %w", id, repository.ErrNotFound)
	}
	for _, rt := range r.ratings {
		if rt.StoreID == id {
			return fmt.Errorf("delete store %s: still referenced by rating %s", id, rt.ID)
		}
	}
	delete(r.stores, id)
	return nil
}

func sortStores(stores []*entity.Store) []*entity.Store {
	sort.SliceStable(stores, func(i, j int) bool {
		if stores[i].Name != stores[j].Name {
			return stores[i].Name < stores[j].Name
		}
		return stores[i].ID.String() < stores[j].ID.String()
	})
	return stores
}

// ==================== RATINGS ====================

type ratingRepo struct{ *db }

func (r *ratingRepo) Create(_ context.Context, rating *entity.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rt := range r.ratings {
		if rt.UserID == rating.UserID && rt.StoreID == rating.StoreID {
			return fmt.Errorf("create rating: %w", repository.ErrDuplicate)
		}
	}
	r.ratings[rating.ID] = *rating
	return nil
}

func (r *ratingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.ratings[id]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *ratingRepo) FindByUserAndStore(_ context.Context, userID, storeID uuid.UUID) (*entity.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rt := range r.ratings {
		if rt.UserID == userID && rt.StoreID == storeID {
			return &rt, nil
		}
	}
	return nil, nil
}

func (r *ratingRepo) where(match func(entity.Rating) bool) []*entity.Rating {
	var out []*entity.Rating
	for _, rt := range r.ratings {
		if match(rt) {
			out = append(out, &rt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newestFirst(out[i].Base, out[j].Base)
	})
	return out
}

func (r *ratingRepo) FindByUserAndStores(_ context.Context, userID uuid.UUID, storeIDs []uuid.UUID) ([]*entity.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := idSet(storeIDs)
	return r.where(func(rt entity.Rating) bool { return rt.UserID == userID && set[rt.StoreID] }), nil
}

func (r *ratingRepo) FindByStoreIDs(_ context.Context, storeIDs []uuid.UUID) ([]*entity.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := idSet(storeIDs)
	return r.where(func(rt entity.Rating) bool { return set[rt.StoreID] }), nil
}

func (r *ratingRepo) FindByStoreID(_ context.Context, storeID uuid.UUID, limit, offset int) ([]*entity.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return page(r.where(func(rt entity.Rating) bool { return rt.StoreID == storeID }), limit, offset), nil
}

func (r *ratingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return page(r.where(func(rt entity.Rating) bool { return rt.UserID == userID }), limit, offset), nil
}

func (r *ratingRepo) ListAll(_ context.Context) ([]*entity.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.where(func(entity.Rating) bool { return true }), nil
}

func (r *ratingRepo) CountByStoreID(_ context.Context, storeID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.where(func(rt entity.Rating) bool { return rt.StoreID == storeID }))), nil
}

func (r *ratingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.where(func(rt entity.Rating) bool { return rt.UserID == userID }))), nil
}

func (r *ratingRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.ratings)), nil
}

func (r *ratingRepo) Update(_ context.Context, rating *entity.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.ratings[rating.ID]
	if !ok {
		return fmt.Errorf("update rating %s: %w", rating.ID, repository.ErrNotFound)
	}
	existing.Rating = rating.Rating
	existing.UpdatedAt = rating.UpdatedAt
	r.ratings[rating.ID] = existing
	return nil
}

func (r *ratingRepo) DeleteByStoreID(_ context.Context, storeID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(rt entity.Rating) bool { return rt.StoreID == storeID }), nil
}

func (r *ratingRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(rt entity.Rating) bool { return rt.UserID == userID }), nil
}

func (r *ratingRepo) deleteWhere(match func(entity.Rating) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rt := range r.ratings {
		if match(rt) {
			delete(r.ratings, id)
			n++
		}
	}
	return n
}
