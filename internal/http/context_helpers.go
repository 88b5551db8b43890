package httpx

import (
	"context"

	"github.com/clustermaster/clustermaster-ui/internal/gate"
)

// principalKey is an unexported context key type to avoid collisions across packages.
type principalKey struct{}

// SetPrincipalInContext returns a child context that carries the signed-in operator.
func SetPrincipalInContext(ctx context.Context, p gate.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the operator attached by the Navigation middleware.
func PrincipalFromContext(ctx context.Context) (gate.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(gate.Principal)
	return p, ok
}
