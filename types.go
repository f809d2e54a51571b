package goUmroh

import (
	"context"
	"time"

	"github.com/MrEthical07/goUmroh/api"
)

// User is the authenticated principal. It is held in memory only.
type User = api.User

// AuthState is the session manager's state.
type AuthState uint8

const (
	// StateBootstrapping is the initial state, before Bootstrap has resolved.
	StateBootstrapping AuthState = iota
	// StateUnauthenticated means no credential is held.
	StateUnauthenticated
	// StateAwaitingExchange means a deep link is being exchanged for a token.
	StateAwaitingExchange
	// StateAuthenticated means a verified credential and user are held.
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingExchange:
		return "awaiting_exchange"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LoginIntent is an in-flight redirect login. It is never persisted.
type LoginIntent struct {
	CallbackURL      string
	AuthorizationURL string
	StartedAt        time.Time
}

// StateChange is delivered to subscribers on every visible state transition.
type StateChange struct {
	From AuthState
	To   AuthState
	// User is set when To is StateAuthenticated.
	User *User
}

// URLOpener hands a URL to the platform (browser, OS handler). Open should
// return once the hand-off is done; it must not wait for the user.
type URLOpener interface {
	Open(ctx context.Context, url string) error
}

// URLOpenerFunc adapts a function to [URLOpener].
type URLOpenerFunc func(ctx context.Context, url string) error

func (f URLOpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// AuthBackend is the subset of the backend the session manager talks to.
// *api.AuthService satisfies it; tests substitute fakes.
type AuthBackend interface {
	ExchangeSession(ctx context.Context, sessionID string) (*api.SessionExchange, error)
	Me(ctx context.Context, token string) (*User, error)
	Logout(ctx context.Context, token string) error
}

// SessionProvider is the session capability exposed to the rest of an
// application. *Client implements it.
type SessionProvider interface {
	Login(ctx context.Context) (*LoginIntent, error)
	Logout(ctx context.Context) error
	CurrentUser() (User, bool)
	State() AuthState
}

var _ SessionProvider = (*Client)(nil)
