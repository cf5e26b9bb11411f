// Package auth carries the authenticated user through a request context.
package auth

import (
	"context"

	"cashlytic-server/src/models"
)

type ctxKey struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}

// UserID returns the internal user id, or "" for an unauthenticated context.
func UserID(ctx context.Context) string {
	if u, ok := UserFromContext(ctx); ok {
		return u.ID
	}
	return ""
}
