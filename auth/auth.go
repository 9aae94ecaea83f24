// Package auth carries the identity of the caller through a context.
// Policy (who may do what) is decided upstream; the engine only needs
// to know whether a user is present.
package auth

import (
	"context"

	"quickscan-service/models"
)

// Provider resolves the user behind an operation.
type Provider interface {
	CurrentUser(ctx context.Context) (*models.User, bool)
}

type ctxKey struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}

// ContextProvider reads the user injected by the HTTP auth middleware
// or by the device-scan wiring.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (*models.User, bool) {
	return UserFrom(ctx)
}
