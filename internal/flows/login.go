package flows

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// QueryInstallID is appended to the callback URL so that each install has a
// distinct redirect target.
const QueryInstallID = "install_id"

// LoginIntentDeps captures login-intent flow dependencies.
type LoginIntentDeps struct {
	AuthURL     string
	CallbackURL string
	InstallID   string
	Now         func() time.Time
}

// LoginIntentResult describes an external login the caller should open.
type LoginIntentResult struct {
	CallbackURL      string
	AuthorizationURL string
	StartedAt        time.Time
}

// RunLoginIntent builds the callback and authorization URLs. It performs no
// I/O; opening the URL is the caller's concern.
func RunLoginIntent(deps LoginIntentDeps) (LoginIntentResult, error) {
	callback, err := BuildCallbackURL(deps.CallbackURL, deps.InstallID)
	if err != nil {
		return LoginIntentResult{}, err
	}
	authURL, err := AuthorizationURL(deps.AuthURL, callback)
	if err != nil {
		return LoginIntentResult{}, err
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	return LoginIntentResult{
		CallbackURL:      callback,
		AuthorizationURL: authURL,
		StartedAt:        now(),
	}, nil
}

// BuildCallbackURL adds the install id to base. Existing query parameters are
// kept.
func BuildCallbackURL(base, installID string) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", errors.New("callback url required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid callback url: %w", err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("callback url %q has no scheme", base)
	}
	if installID != "" {
		q := u.Query()
		q.Set(QueryInstallID, installID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// AuthorizationURL returns "<authURL>/?redirect=<escaped callback>".
func AuthorizationURL(authURL, callback string) (string, error) {
	authURL = strings.TrimRight(strings.TrimSpace(authURL), "/")
	if authURL == "" {
		return "", errors.New("auth url required")
	}
	if _, err := url.Parse(authURL); err != nil {
		return "", fmt.Errorf("invalid auth url: %w", err)
	}
	return authURL + "/?redirect=" + url.QueryEscape(callback), nil
}
