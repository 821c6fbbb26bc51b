package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	buyerIDKey contextKey = "buyer_id"
	emailKey   contextKey = "email"
	roleKey    contextKey = "role"
)

const RoleAdmin = "ADMIN"

// SetIdentity stores the authenticated buyer into the context (called by middleware).
func SetIdentity(ctx context.Context, buyerID uuid.UUID, email, role string) context.Context {
	ctx = context.WithValue(ctx, buyerIDKey, buyerID)
	ctx = context.WithValue(ctx, emailKey, email)
	ctx = context.WithValue(ctx, roleKey, role)
	return ctx
}

func BuyerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(buyerIDKey).(uuid.UUID)
	return id, ok
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == RoleAdmin
}
