package api

import (
	"context"
	"fmt"
	"net/http"
)

// TokenSource yields the current session token, or "" when none is held.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to [TokenSource].
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// BearerTransport attaches the current session token to every request.
type BearerTransport struct {
	// Base performs the request; http.DefaultTransport when nil.
	Base   http.RoundTripper
	Tokens TokenSource
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.Tokens != nil {
		var err error
		token, err = t.Tokens.Token(req.Context())
		if err != nil {
			closeBody(req)
			return nil, fmt.Errorf("%w: read credential: %v", ErrTransport, err)
		}
	}

	out := req
	if token != "" {
		out = req.Clone(req.Context())
		out.Header.Set("Authorization", bearer(token))
	}

	return t.base().RoundTrip(out)
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func bearer(token string) string {
	return "Bearer " + token
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
