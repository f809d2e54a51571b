package api

import (
	"context"
	"errors"
	"net/http"
)

// HeaderSessionID carries the one-time login identifier to /auth/session.
const HeaderSessionID = "X-Session-ID"

// ErrEmptyExchange is returned when /auth/session answers 2xx without a token.
var ErrEmptyExchange = errors.New("api: session exchange returned no token")

// AuthService exposes the session endpoints. None of its calls go through
// bearer injection.
type AuthService struct {
	c *Client
}

// ExchangeSession trades a one-time session id for a durable token.
// The id travels in X-Session-ID, never as a bearer token.
func (s *AuthService) ExchangeSession(ctx context.Context, sessionID string) (*SessionExchange, error) {
	var out SessionExchange
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/auth/session",
		path:   "/auth/session",
		header: http.Header{HeaderSessionID: []string{sessionID}},
		body:   struct{}{},
		out:    &out,
		anon:   true,
	})
	if err != nil {
		return nil, err
	}
	if out.SessionToken == "" {
		return nil, ErrEmptyExchange
	}
	return &out, nil
}

// Me returns the identity behind token.
func (s *AuthService) Me(ctx context.Context, token string) (*User, error) {
	var out User
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/auth/me",
		path:   "/auth/me",
		header: http.Header{"Authorization": []string{bearer(token)}},
		out:    &out,
		anon:   true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the backend to invalidate the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/auth/logout",
		path:   "/auth/logout",
		header: http.Header{"Authorization": []string{bearer(token)}},
		body:   struct{}{},
		anon:   true,
	})
}
