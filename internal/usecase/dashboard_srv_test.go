package usecase

import (
	"context"
	"testing"
	"time"

	"store-rating/internal/data/entity"
	"store-rating/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerDashboardPoolsRatings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	u1 := h.user("u1", entity.RoleUser)
	u2 := h.user("u2", entity.RoleUser)
	s1 := h.store("s1", owner)
	s2 := h.store("s2", owner)
	h.rate(u1, s1, 5)
	h.rate(u2, s1, 5)
	h.rate(u1, s2, 1)

	dash, err := h.svc.Dashboard.Owner(ctx, principalOf(t, owner))
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TotalStores)
	assert.Equal(t, 3, dash.TotalRatings)
	// 11/3 pooled, not (5+1)/2
	assert.Equal(t, 3.7, dash.AverageRating)
	assert.Len(t, dash.Stores, 2)
	assert.Len(t, dash.RecentRatings, 3)
	for _, r := range dash.RecentRatings {
		assert.NotEmpty(t, r.UserName)
		assert.NotEmpty(t, r.StoreName)
	}
}

func TestOwnerDashboardWithoutStores(t *testing.T) {
	h := newHarness(t)

	owner := h.user("owner", entity.RoleOwner)

	dash, err := h.svc.Dashboard.Owner(context.Background(), principalOf(t, owner))
	require.NoError(t, err)
	assert.Zero(t, dash.TotalStores)
	assert.Zero(t, dash.AverageRating)
	assert.Empty(t, dash.RecentRatings)
}

func TestAdminDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)
	store := h.store("bakery", owner)
	h.store("deli", owner)
	h.rate(rater, store, 4)

	dash, err := h.svc.Dashboard.Admin(ctx, principalOf(t, admin))
	require.NoError(t, err)

	assert.Equal(t, int64(3), dash.TotalUsers)
	assert.Equal(t, map[string]int64{"admin": 1, "owner": 1, "user": 1}, dash.UsersByRole)
	assert.Equal(t, int64(2), dash.TotalStores)
	assert.Equal(t, int64(1), dash.TotalRatings)
	assert.Equal(t, 4.0, dash.AverageRating)
	assert.Equal(t, 1, dash.Distribution[4])
	require.Len(t, dash.RecentRatings, 1)
	assert.Equal(t, "rater", dash.RecentRatings[0].UserName)
}

func TestAdminDashboardFeedTiesFollowStorageOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.user("admin", entity.RoleAdmin)
	owner := h.user("owner", entity.RoleOwner)
	zeta := h.store("zeta", owner)
	alpha := h.store("alpha", owner)

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, st := range []*entity.Store{zeta, alpha, zeta, alpha} {
		rater := h.user("rater"+string(rune('a'+i)), entity.RoleUser)
		require.NoError(t, h.repo.Rating.Create(ctx, &entity.Rating{
			Base:    entity.Base{ID: uuid.New(), CreatedAt: at, UpdatedAt: at},
			UserID:  rater.ID,
			StoreID: st.ID,
			Rating:  3,
		}))
	}

	stored, err := h.repo.Rating.ListAll(ctx)
	require.NoError(t, err)

	dash, err := h.svc.Dashboard.Admin(ctx, principalOf(t, admin))
	require.NoError(t, err)

	require.Len(t, dash.RecentRatings, len(stored))
	for i, r := range stored {
		assert.Equal(t, r.ID.String(), dash.RecentRatings[i].ID)
	}
}

func TestDashboardRoles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := h.user("owner", entity.RoleOwner)
	rater := h.user("rater", entity.RoleUser)

	_, err := h.svc.Dashboard.Admin(ctx, principalOf(t, owner))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = h.svc.Dashboard.Owner(ctx, principalOf(t, rater))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = h.svc.Dashboard.Owner(ctx, nil)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}
