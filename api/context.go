package api

import (
	"context"

	"github.com/homebasehq/homebase/store"
)

type contextKey int

const (
	contextKeyUser contextKey = iota
	contextKeySession
)

// SetUserContext returns a new context with the user attached.
func SetUserContext(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, u)
}

// UserFromContext extracts the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(contextKeyUser).(*store.User)
	return u
}

// SetSessionContext returns a new context with the session attached.
func SetSessionContext(ctx context.Context, s *store.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, s)
}

// SessionFromContext extracts the session from context, or nil when the
// request authenticated with a bearer token instead.
func SessionFromContext(ctx context.Context) *store.Session {
	s, _ := ctx.Value(contextKeySession).(*store.Session)
	return s
}
