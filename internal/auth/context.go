package auth

import (
	"context"

	"github.com/dukerupert/larder/internal/model"
)

type contextKey struct{}

func WithIdentity(ctx context.Context, ident model.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

func FromContext(ctx context.Context) (model.Identity, bool) {
	ident, ok := ctx.Value(contextKey{}).(model.Identity)
	return ident, ok
}

// ExternalID returns the caller's provider subject, or "" when unauthenticated.
func ExternalID(ctx context.Context) string {
	ident, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ident.ExternalID
}
