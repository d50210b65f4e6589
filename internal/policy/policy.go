package policy

import (
	"store-rating/pkg/apperr"

	"github.com/google/uuid"
)

type Action string

const (
	ActionManageUsers        Action = "users.manage"
	ActionViewAdminDashboard Action = "dashboard.admin"
	ActionViewOwnerDashboard Action = "dashboard.owner"
	ActionBrowseStores       Action = "stores.browse"
	ActionReadStore          Action = "stores.read"
	ActionCreateStore        Action = "stores.create"
	ActionUpdateStore        Action = "stores.update"
	ActionDeleteStore        Action = "stores.delete"
	ActionReadStoreRatings   Action = "stores.ratings"
	ActionSubmitRating       Action = "ratings.submit"
	ActionUpdateRating       Action = "ratings.update"
	ActionReadOwnRatings     Action = "ratings.own"
	ActionManageOwnProfile   Action = "profile.manage"
)

const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

// Target describes ownership of the resource an action touches. Zero ids
// mean the action has no such owner.
type Target struct {
	OwnerID uuid.UUID // store owner
	UserID  uuid.UUID // rating author or profile subject
}

type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err converts a denial into the matching application error.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return apperr.Unauthenticated(ReasonUnauthenticated)
	default:
		return apperr.Forbidden(ReasonForbidden)
	}
}

// Authorize decides whether principal may perform action on target. It has
// no side effects.
func Authorize(principal Principal, action Action, target Target) Decision {
	if principal == nil || principal.PrincipalID() == uuid.Nil {
		return deny(ReasonUnauthenticated)
	}

	id := principal.PrincipalID()
	if action == ActionManageOwnProfile {
		return allowIf(target.UserID == id)
	}

	switch principal.(type) {
	case AdminPrincipal:
		switch action {
		case ActionManageUsers, ActionViewAdminDashboard,
			ActionBrowseStores, ActionReadStore, ActionCreateStore,
			ActionUpdateStore, ActionDeleteStore, ActionReadStoreRatings:
			return allow
		}
		return deny(ReasonForbidden)

	case OwnerPrincipal:
		switch action {
		case ActionCreateStore, ActionViewOwnerDashboard:
			return allow
		case ActionReadStore, ActionUpdateStore, ActionDeleteStore, ActionReadStoreRatings:
			return allowIf(target.OwnerID == id)
		}
		return deny(ReasonForbidden)

	case UserPrincipal:
		switch action {
		case ActionBrowseStores, ActionReadStore, ActionSubmitRating, ActionReadOwnRatings:
			return allow
		case ActionUpdateRating:
			return allowIf(target.UserID == id)
		}
		return deny(ReasonForbidden)

	default:
		return deny(ReasonUnauthenticated)
	}
}

// AuthorizeRole decides on role alone by assuming the principal owns the
// target. A denial here holds for every target.
func AuthorizeRole(principal Principal, action Action) Decision {
	if principal == nil {
		return deny(ReasonUnauthenticated)
	}
	id := principal.PrincipalID()
	return Authorize(principal, action, Target{OwnerID: id, UserID: id})
}

// Check is Authorize(...).Err().
func Check(principal Principal, action Action, target Target) error {
	return Authorize(principal, action, target).Err()
}

func allowIf(ok bool) Decision {
	if ok {
		return allow
	}
	return deny(ReasonForbidden)
}

// CheckRole is AuthorizeRole(...).Err().
func CheckRole(principal Principal, action Action) error {
	return AuthorizeRole(principal, action).Err()
}
