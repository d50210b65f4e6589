package usecase

import (
	"context"
	"fmt"
	"testing"

	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/internal/dto/request"
	"store-rating/pkg/apperr"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemotingOwnerWithStoresConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	owner := h.user("owner", entity.RoleOwner)
	store := h.store("bakery", owner)

	_, err := h.svc.User.UpdateUser(ctx, principalOf(t, admin), owner.ID.String(),
		&request.UpdateUserRequest{Role: ptr("user")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, h.svc.Store.DeleteStore(ctx, principalOf(t, admin), store.ID.String()))

	resp, err := h.svc.User.UpdateUser(ctx, principalOf(t, admin), owner.ID.String(),
		&request.UpdateUserRequest{Role: ptr("user")})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, resp.Role)
}

func TestDeleteUserCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	owner := h.user("owner", entity.RoleOwner)
	otherOwner := h.user("other", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	owned := h.store("bakery", owner)
	kept := h.store("deli", otherOwner)
	h.rate(rater, owned, 5)
	h.rate(rater, kept, 3)

	require.NoError(t, h.svc.User.DeleteUser(ctx, principalOf(t, admin), owner.ID.String()))

	gone, err := h.repo.Store.FindByID(ctx, owned.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	n, err := h.repo.Rating.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, h.svc.User.DeleteUser(ctx, principalOf(t, admin), rater.ID.String()))
	n, err = h.repo.Rating.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	err = h.svc.User.DeleteUser(ctx, principalOf(t, admin), admin.ID.String())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	err = h.svc.User.DeleteUser(ctx, principalOf(t, admin), rater.ID.String())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// goneUserRepo loses every delete to a concurrent one.
type goneUserRepo struct {
	repository.UserRepository
}

func (goneUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	return fmt.Errorf("delete user %s: %w", id, repository.ErrNotFound)
}

func TestDeleteUserRacingDeleteIsNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	victim := h.user("victim", entity.RoleUser)
	h.repo.User = goneUserRepo{h.repo.User}

	err := h.svc.User.DeleteUser(ctx, principalOf(t, admin), victim.ID.String())

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListUsers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	owner := h.user("owner", entity.RoleOwner)
	u1 := h.user("u1", entity.RoleUser)
	u2 := h.user("u2", entity.RoleUser)
	s1 := h.store("s1", owner)
	s2 := h.store("s2", owner)
	h.rate(u1, s1, 5)
	h.rate(u2, s1, 5)
	h.rate(u1, s2, 1)

	owners, err := h.svc.User.ListUsers(ctx, principalOf(t, admin), &request.ListUsersRequest{Role: "owner"})
	require.NoError(t, err)
	require.Len(t, owners.Data, 1)
	require.NotNil(t, owners.Data[0].AverageRating)
	assert.Equal(t, 3.7, *owners.Data[0].AverageRating)
	assert.Equal(t, 2, *owners.Data[0].TotalStores)

	users, err := h.svc.User.ListUsers(ctx, principalOf(t, admin), &request.ListUsersRequest{Search: "u1"})
	require.NoError(t, err)
	require.Len(t, users.Data, 1)
	assert.Nil(t, users.Data[0].AverageRating)

	_, err = h.svc.User.ListUsers(ctx, principalOf(t, admin), &request.ListUsersRequest{Role: "superuser"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = h.svc.User.ListUsers(ctx, principalOf(t, owner), &request.ListUsersRequest{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestGetUserIncludesOwnerStores(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	store := h.store("bakery", owner)
	h.rate(rater, store, 4)

	detail, err := h.svc.User.GetUser(ctx, principalOf(t, admin), owner.ID.String())
	require.NoError(t, err)
	require.Len(t, detail.Stores, 1)
	assert.Equal(t, store.ID.String(), detail.Stores[0].StoreID)
	assert.Equal(t, 4.0, detail.Stores[0].AverageRating)

	detail, err = h.svc.User.GetUser(ctx, principalOf(t, admin), rater.ID.String())
	require.NoError(t, err)
	assert.Empty(t, detail.Stores)
}

func TestCreateUserByAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)

	resp, err := h.svc.User.CreateUser(ctx, principalOf(t, admin), &request.CreateUserRequest{
		Name:     "Second Admin",
		Email:    "Second@Example.com",
		Password: "secret1",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.Role)
	assert.Equal(t, "second@example.com", resp.Email)

	_, err = h.svc.User.CreateUser(ctx, principalOf(t, admin), &request.CreateUserRequest{
		Name:     "Copy",
		Email:    "SECOND@example.com",
		Password: "secret1",
		Role:     "user",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
