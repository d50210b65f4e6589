package usecase

import (
	"context"
	"testing"

	"store-rating/internal/data/entity"
	"store-rating/internal/dto/request"
	"store-rating/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCannotDeleteStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	store := h.store("bakery", owner)
	h.rate(rater, store, 4)

	err := h.svc.Store.DeleteStore(ctx, principalOf(t, rater), store.ID.String())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	still, err := h.repo.Store.FindByID(ctx, store.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)

	n, err := h.repo.Rating.CountByStoreID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOwnerDeletesStoreWithRatings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	store := h.store("bakery", owner)
	h.rate(rater, store, 2)

	require.NoError(t, h.svc.Store.DeleteStore(ctx, principalOf(t, owner), store.ID.String()))

	gone, err := h.repo.Store.FindByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	n, err := h.repo.Rating.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteStoreByOtherOwnerIsForbidden(t *testing.T) {
	h := newHarness(t)

	owner := h.user("owner", entity.RoleOwner)
	other := h.user("other", entity.RoleOwner)
	store := h.store("bakery", owner)

	err := h.svc.Store.DeleteStore(context.Background(), principalOf(t, other), store.ID.String())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestListStoreRatingsOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	other := h.user("other", entity.RoleOwner)
	a := h.user("alice", entity.RoleUser)
	b := h.user("bob", entity.RoleUser)
	store := h.store("bakery", owner)
	h.rate(a, store, 5)
	h.rate(b, store, 2)

	_, err := h.svc.Store.ListStoreRatings(ctx, principalOf(t, other), store.ID.String(), &request.PaginatedRequest{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = h.svc.Store.ListStoreRatings(ctx, principalOf(t, a), store.ID.String(), &request.PaginatedRequest{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	resp, err := h.svc.Store.ListStoreRatings(ctx, principalOf(t, owner), store.ID.String(),
		&request.PaginatedRequest{Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Ratings, 1)
	assert.Equal(t, int64(2), resp.TotalRatings)
	assert.Equal(t, 3.5, resp.AverageRating)
	assert.True(t, resp.Pagination.HasNextPage)
	assert.NotEmpty(t, resp.Ratings[0].UserName)

	admin := h.user("admin", entity.RoleAdmin)
	_, err = h.svc.Store.ListStoreRatings(ctx, principalOf(t, admin), store.ID.String(), &request.PaginatedRequest{})
	assert.NoError(t, err)
}

func TestListStoresPaginationAndMyRating(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	cafe := h.store("cafe", owner)
	h.store("bakery", owner)
	h.store("deli", owner)
	h.rate(rater, cafe, 3)

	p := principalOf(t, rater)

	first, err := h.svc.Store.ListStores(ctx, p, &request.ListStoresRequest{PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 2}})
	require.NoError(t, err)
	require.Len(t, first.Data, 2)
	assert.Equal(t, "bakery", first.Data[0].Name)
	assert.Equal(t, "cafe", first.Data[1].Name)
	assert.Equal(t, int64(3), first.Pagination.Total)
	assert.Equal(t, 2, first.Pagination.TotalPages)
	assert.True(t, first.Pagination.HasNextPage)
	assert.False(t, first.Pagination.HasPrevPage)

	assert.Nil(t, first.Data[0].MyRating)
	require.NotNil(t, first.Data[1].MyRating)
	assert.Equal(t, 3, *first.Data[1].MyRating)
	assert.Equal(t, 3.0, first.Data[1].AverageRating)

	second, err := h.svc.Store.ListStores(ctx, p, &request.ListStoresRequest{PaginatedRequest: request.PaginatedRequest{Page: 2, PerPage: 2}})
	require.NoError(t, err)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "deli", second.Data[0].Name)
	assert.False(t, second.Pagination.HasNextPage)
	assert.True(t, second.Pagination.HasPrevPage)

	search, err := h.svc.Store.ListStores(ctx, p, &request.ListStoresRequest{Search: "CAF"})
	require.NoError(t, err)
	require.Len(t, search.Data, 1)
	assert.Equal(t, cafe.ID.String(), search.Data[0].ID)

	_, err = h.svc.Store.ListStores(ctx, principalOf(t, owner), &request.ListStoresRequest{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = h.svc.Store.ListStores(ctx, nil, &request.ListStoresRequest{})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestGetStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	store := h.store("bakery", owner)
	h.rate(rater, store, 4)

	detail, err := h.svc.Store.GetStore(ctx, principalOf(t, rater), store.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 4.0, detail.AverageRating)
	assert.Equal(t, 1, detail.Distribution[4])
	require.NotNil(t, detail.Owner)
	assert.Equal(t, owner.Name, detail.Owner.Name)
	require.Len(t, detail.RecentRatings, 1)
	assert.Equal(t, rater.Name, detail.RecentRatings[0].UserName)
	require.NotNil(t, detail.MyRating)
	assert.Equal(t, 4, *detail.MyRating)

	_, err = h.svc.Store.GetStore(ctx, principalOf(t, rater), uuid.NewString())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = h.svc.Store.GetStore(ctx, principalOf(t, rater), "not-a-uuid")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)

	t.Run("owner creates for self", func(t *testing.T) {
		resp, err := h.svc.Store.CreateStore(ctx, principalOf(t, owner), &request.CreateStoreRequest{
			Name:    "Corner Shop",
			Email:   "Corner@Example.com",
			OwnerID: admin.ID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, owner.ID.String(), resp.OwnerID)
		assert.Equal(t, "corner@example.com", resp.Email)
		assert.Zero(t, resp.TotalRatings)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := h.svc.Store.CreateStore(ctx, principalOf(t, owner), &request.CreateStoreRequest{
			Name:  "Second",
			Email: "corner@example.com",
		})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("admin needs owner", func(t *testing.T) {
		_, err := h.svc.Store.CreateStore(ctx, principalOf(t, admin), &request.CreateStoreRequest{
			Name:  "Kiosk",
			Email: "kiosk@example.com",
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = h.svc.Store.CreateStore(ctx, principalOf(t, admin), &request.CreateStoreRequest{
			Name:    "Kiosk",
			Email:   "kiosk@example.com",
			OwnerID: rater.ID.String(),
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		resp, err := h.svc.Store.CreateStore(ctx, principalOf(t, admin), &request.CreateStoreRequest{
			Name:    "Kiosk",
			Email:   "kiosk@example.com",
			OwnerID: owner.ID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, owner.ID.String(), resp.OwnerID)
	})

	t.Run("user forbidden", func(t *testing.T) {
		_, err := h.svc.Store.CreateStore(ctx, principalOf(t, rater), &request.CreateStoreRequest{
			Name:  "Nope",
			Email: "nope@example.com",
		})
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("invalid body", func(t *testing.T) {
		_, err := h.svc.Store.CreateStore(ctx, principalOf(t, owner), &request.CreateStoreRequest{Email: "bad"})
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "Name")
	})
}

func TestUpdateStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	other := h.user("other", entity.RoleOwner)
	store := h.store("bakery", owner)
	taken := h.store("deli", other)

	_, err := h.svc.Store.UpdateStore(ctx, principalOf(t, other), store.ID.String(),
		&request.UpdateStoreRequest{Name: ptr("Hijacked")})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = h.svc.Store.UpdateStore(ctx, principalOf(t, owner), store.ID.String(),
		&request.UpdateStoreRequest{Email: ptr(taken.Email)})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	resp, err := h.svc.Store.UpdateStore(ctx, principalOf(t, owner), store.ID.String(),
		&request.UpdateStoreRequest{Name: ptr("Bakery & Co"), Email: ptr(store.Email)})
	require.NoError(t, err)
	assert.Equal(t, "Bakery & Co", resp.Name)
}

func TestMyStores(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	other := h.user("other", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	mine := h.store("bakery", owner)
	h.store("deli", other)
	h.rate(rater, mine, 5)

	stores, err := h.svc.Store.MyStores(ctx, principalOf(t, owner))
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, mine.ID.String(), stores[0].ID)
	assert.Equal(t, 5.0, stores[0].AverageRating)

	_, err = h.svc.Store.MyStores(ctx, principalOf(t, rater))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
