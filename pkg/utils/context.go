package utils

import (
	"context"

	"store-rating/internal/policy"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// GetPrincipalFromContext mendapatkan principal yang diset oleh middleware auth
func GetPrincipalFromContext(ctx context.Context) (policy.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(policy.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}

func SetPrincipalContext(ctx context.Context, principal policy.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}
