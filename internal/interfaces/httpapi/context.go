package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/team-events/internal/domain/user"
	"github.com/riskibarqy/team-events/internal/usecase"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// requirePrincipal returns the caller resolved by RequireAuth. Routes mounted
// without RequireAuth never carry one and answer 401.
func requirePrincipal(ctx context.Context) (user.Principal, error) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	if !ok || p.UserID <= 0 {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return p, nil
}
