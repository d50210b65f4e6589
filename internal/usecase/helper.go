package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/pkg/apperr"
	"store-rating/pkg/utils"

	"github.com/google/uuid"
)

// ==================== HELPER METHODS ====================

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("Validation failed", errs)
	}
	return nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		msg := fmt.Sprintf("invalid %s", strings.ReplaceAll(field, "_", " "))
		return uuid.Nil, apperr.Validation(msg, map[string]string{field: "Must be a valid UUID"})
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// usersByID loads the given users keyed by id. Missing users are absent.
func usersByID(ctx context.Context, repo repository.UserRepository, ids []uuid.UUID) (map[uuid.UUID]*entity.User, error) {
	users, err := repo.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	return index, nil
}

func storesByID(ctx context.Context, repo repository.StoreRepository, ids []uuid.UUID) (map[uuid.UUID]*entity.Store, error) {
	stores, err := repo.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]*entity.Store, len(stores))
	for _, s := range stores {
		index[s.ID] = s
	}
	return index, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func storeIDs(stores []*entity.Store) []uuid.UUID {
	ids := make([]uuid.UUID, len(stores))
	for i, s := range stores {
		ids[i] = s.ID
	}
	return ids
}

func raterIDs(ratings []*entity.Rating) []uuid.UUID {
	ids := make([]uuid.UUID, len(ratings))
	for i, r := range ratings {
		ids[i] = r.UserID
	}
	return ids
}

func checkEmailFree(ctx context.Context, users repository.UserRepository, email string, self uuid.UUID) error {
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Conflict("Email already registered")
	}
	return nil
}

// createAccount hashes the password and stores a new user with role.
func createAccount(ctx context.Context, users repository.UserRepository, name, email, password string, address *string, role entity.Role) (*entity.User, error) {
	email = normalizeEmail(email)
	if err := checkEmailFree(ctx, users, email, uuid.Nil); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Address:      utils.OptionalString(address),
	}

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}
