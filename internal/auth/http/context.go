// Package http provides the HTTP handlers and middleware of the authenticator.
package http

import (
	"context"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

// sessionKey is a context key type for storing the verified session.
type sessionKey struct{}

// tokenKey is a context key type for storing the raw bearer token.
type tokenKey struct{}

// WithSession stores a verified session in the context.
// This is called by AuthenticationMiddleware after a successful verification.
func WithSession(ctx context.Context, session *authDomain.SessionInfo) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSession retrieves the verified session from the context.
// Returns (session, true) if present, or (nil, false) if no session was set.
func GetSession(ctx context.Context) (*authDomain.SessionInfo, bool) {
	session, ok := ctx.Value(sessionKey{}).(*authDomain.SessionInfo)
	return session, ok
}

// WithToken stores the raw bearer token in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken retrieves the raw bearer token from the context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}
