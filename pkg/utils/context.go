package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	IdentityIDKey contextKey = "identity_id"
	EmailKey      contextKey = "email"
	TokenKey      contextKey = "token"
	CartIDKey     contextKey = "cart_id"
)

func GetIdentityIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(IdentityIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok && email != ""
}

func SetIdentityContext(ctx context.Context, id uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, IdentityIDKey, id)
	ctx = context.WithValue(ctx, EmailKey, email)
	return ctx
}

// GetTokenFromContext returns the access token of the current request
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

func GetCartIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CartIDKey).(string)
	return id, ok && id != ""
}

func SetCartIDContext(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, CartIDKey, cartID)
}
