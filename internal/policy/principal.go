package policy

import (
	"fmt"

	"store-rating/internal/data/entity"

	"github.com/google/uuid"
)

// Principal is the authenticated identity attached to an operation. The set
// of implementations is closed: AdminPrincipal, OwnerPrincipal and
// UserPrincipal.
type Principal interface {
	PrincipalID() uuid.UUID
	Role() entity.Role
	sealed()
}

type AdminPrincipal struct{ ID uuid.UUID }

type OwnerPrincipal struct{ ID uuid.UUID }

type UserPrincipal struct{ ID uuid.UUID }

func (p AdminPrincipal) PrincipalID() uuid.UUID { return p.ID }
func (p OwnerPrincipal) PrincipalID() uuid.UUID { return p.ID }
func (p UserPrincipal) PrincipalID() uuid.UUID  { return p.ID }

func (AdminPrincipal) Role() entity.Role { return entity.RoleAdmin }
func (OwnerPrincipal) Role() entity.Role { return entity.RoleOwner }
func (UserPrincipal) Role() entity.Role  { return entity.RoleUser }

func (AdminPrincipal) sealed() {}
func (OwnerPrincipal) sealed() {}
func (UserPrincipal) sealed()  {}

// NewPrincipal maps a stored role onto its principal variant.
func NewPrincipal(id uuid.UUID, role entity.Role) (Principal, error) {
	switch role {
	case entity.RoleAdmin:
		return AdminPrincipal{ID: id}, nil
	case entity.RoleOwner:
		return OwnerPrincipal{ID: id}, nil
	case entity.RoleUser:
		return UserPrincipal{ID: id}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}
