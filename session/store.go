package session

import (
	"context"
	"errors"
)

// KeySessionToken is the fixed storage key of the session credential.
const KeySessionToken = "session_token"

var (
	// ErrNotFound is returned by Load when no credential is persisted.
	ErrNotFound = errors.New("session credential not found")
	// ErrStoreUnavailable wraps backend failures of a Store.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrCorrupt is returned when a persisted record cannot be decoded.
	ErrCorrupt = errors.New("session credential corrupt")
	// ErrEmptyToken is returned by Save for a credential without a token.
	ErrEmptyToken = errors.New("session credential token empty")
)

// Store persists exactly one session credential.
//
// Implementations must be safe for concurrent use. Clear must be idempotent.
type Store interface {
	Load(ctx context.Context) (*Credential, error)
	Save(ctx context.Context, cred *Credential) error
	Clear(ctx context.Context) error
}

// LoadToken returns the persisted token, or "" when none is persisted.
// Corrupt records read as absent so that callers fall back to anonymous.
func LoadToken(ctx context.Context, s Store) (string, error) {
	cred, err := s.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
			return "", nil
		}
		return "", err
	}
	return cred.Token, nil
}
