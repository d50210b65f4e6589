package policy

import (
	"testing"

	"store-rating/internal/data/entity"
	"store-rating/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	adminID, ownerID, otherOwnerID, userID, otherUserID := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()

	admin := AdminPrincipal{ID: adminID}
	owner := OwnerPrincipal{ID: ownerID}
	user := UserPrincipal{ID: userID}

	ownStore := Target{OwnerID: ownerID}
	foreignStore := Target{OwnerID: otherOwnerID}

	tests := []struct {
		name      string
		principal Principal
		action    Action
		target    Target
		want      Decision
	}{
		{"nil principal", nil, ActionBrowseStores, Target{}, deny(ReasonUnauthenticated)},
		{"nil id", UserPrincipal{}, ActionBrowseStores, Target{}, deny(ReasonUnauthenticated)},
		{"nil id is checked before role", AdminPrincipal{}, ActionSubmitRating, Target{}, deny(ReasonUnauthenticated)},

		{"admin manages users", admin, ActionManageUsers, Target{}, allow},
		{"admin dashboard", admin, ActionViewAdminDashboard, Target{}, allow},
		{"admin lists stores", admin, ActionBrowseStores, Target{}, allow},
		{"admin deletes any store", admin, ActionDeleteStore, foreignStore, allow},
		{"admin updates any store", admin, ActionUpdateStore, foreignStore, allow},
		{"admin reads store ratings", admin, ActionReadStoreRatings, foreignStore, allow},
		{"admin never submits", admin, ActionSubmitRating, Target{}, deny(ReasonForbidden)},
		{"admin never updates ratings", admin, ActionUpdateRating, Target{UserID: adminID}, deny(ReasonForbidden)},
		{"admin has no owner dashboard", admin, ActionViewOwnerDashboard, Target{}, deny(ReasonForbidden)},

		{"owner creates store", owner, ActionCreateStore, Target{}, allow},
		{"owner reads own store", owner, ActionReadStore, ownStore, allow},
		{"owner updates own store", owner, ActionUpdateStore, ownStore, allow},
		{"owner deletes own store", owner, ActionDeleteStore, ownStore, allow},
		{"owner reads own store ratings", owner, ActionReadStoreRatings, ownStore, allow},
		{"owner cannot read foreign store", owner, ActionReadStore, foreignStore, deny(ReasonForbidden)},
		{"owner cannot update foreign store", owner, ActionUpdateStore, foreignStore, deny(ReasonForbidden)},
		{"owner cannot delete foreign store", owner, ActionDeleteStore, foreignStore, deny(ReasonForbidden)},
		{"owner cannot submit", owner, ActionSubmitRating, Target{}, deny(ReasonForbidden)},
		{"owner cannot edit rating", owner, ActionUpdateRating, Target{UserID: ownerID}, deny(ReasonForbidden)},
		{"owner cannot manage users", owner, ActionManageUsers, Target{}, deny(ReasonForbidden)},
		{"owner dashboard", owner, ActionViewOwnerDashboard, Target{}, allow},

		{"user browses", user, ActionBrowseStores, Target{}, allow},
		{"user reads store", user, ActionReadStore, foreignStore, allow},
		{"user submits", user, ActionSubmitRating, Target{}, allow},
		{"user updates own rating", user, ActionUpdateRating, Target{UserID: userID}, allow},
		{"user cannot update foreign rating", user, ActionUpdateRating, Target{UserID: otherUserID}, deny(ReasonForbidden)},
		{"user reads own ratings", user, ActionReadOwnRatings, Target{}, allow},
		{"user cannot create store", user, ActionCreateStore, Target{}, deny(ReasonForbidden)},
		{"user cannot delete store", user, ActionDeleteStore, foreignStore, deny(ReasonForbidden)},
		{"user cannot manage users", user, ActionManageUsers, Target{}, deny(ReasonForbidden)},

		{"own profile", user, ActionManageOwnProfile, Target{UserID: userID}, allow},
		{"foreign profile", user, ActionManageOwnProfile, Target{UserID: otherUserID}, deny(ReasonForbidden)},
		{"admin own profile", admin, ActionManageOwnProfile, Target{UserID: adminID}, allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.principal, tt.action, tt.target))
		})
	}
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, allow.Err())
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(deny(ReasonUnauthenticated).Err()))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(deny(ReasonForbidden).Err()))
}

func TestUserCannotDeleteStore(t *testing.T) {
	err := Check(UserPrincipal{ID: uuid.New()}, ActionDeleteStore, Target{OwnerID: uuid.New()})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, "forbidden", err.Error())
}

func TestNewPrincipal(t *testing.T) {
	id := uuid.New()

	p, err := NewPrincipal(id, entity.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, OwnerPrincipal{ID: id}, p)
	assert.Equal(t, entity.RoleOwner, p.Role())

	p, err = NewPrincipal(id, entity.RoleAdmin)
	require.NoError(t, err)
	assert.IsType(t, AdminPrincipal{}, p)

	p, err = NewPrincipal(id, entity.RoleUser)
	require.NoError(t, err)
	assert.IsType(t, UserPrincipal{}, p)

	_, err = NewPrincipal(id, entity.Role("root"))
	assert.Error(t, err)
}

func TestAuthorizeRole(t *testing.T) {
	assert.Equal(t, deny(ReasonUnauthenticated), AuthorizeRole(nil, ActionBrowseStores))
	assert.Equal(t, deny(ReasonUnauthenticated), AuthorizeRole(OwnerPrincipal{}, ActionCreateStore))

	assert.Equal(t, allow, AuthorizeRole(OwnerPrincipal{ID: uuid.New()}, ActionDeleteStore))
	assert.Equal(t, allow, AuthorizeRole(UserPrincipal{ID: uuid.New()}, ActionUpdateRating))
	assert.Equal(t, deny(ReasonForbidden), AuthorizeRole(UserPrincipal{ID: uuid.New()}, ActionDeleteStore))
	assert.Equal(t, deny(ReasonForbidden), AuthorizeRole(AdminPrincipal{ID: uuid.New()}, ActionSubmitRating))

	assert.True(t, apperr.Is(CheckRole(OwnerPrincipal{ID: uuid.New()}, ActionBrowseStores), apperr.KindForbidden))
}
