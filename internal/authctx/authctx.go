package authctx

import (
	"context"

	"gym-manager/backend/internal/domain/gym"
)

type ctxKey string

const (
	userKey   ctxKey = "user"
	accessKey ctxKey = "access"
)

// User is the verified caller of a request.
type User struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Claims        map[string]any
}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func GetUser(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok && u != nil && u.UID != ""
}

func UID(ctx context.Context) (string, bool) {
	u, ok := GetUser(ctx)
	if !ok {
		return "", false
	}
	return u.UID, true
}

func WithAccess(ctx context.Context, a *gym.AccessResult) context.Context {
	return context.WithValue(ctx, accessKey, a)
}

func Access(ctx context.Context) (*gym.AccessResult, bool) {
	a, ok := ctx.Value(accessKey).(*gym.AccessResult)
	return a, ok && a != nil
}
