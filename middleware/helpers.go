package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/club-ladder/services"
)

type contextKey string

const identityContextKey contextKey = "identity"

// GetIdentityFromContext returns the identity stored by Authenticate.
func GetIdentityFromContext(ctx context.Context) (*services.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*services.Identity)
	if !ok || identity == nil {
		return nil, errors.New("session identity not found in context")
	}
	return identity, nil
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *services.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
