package goUmroh

import "errors"

var (
	// ErrClientNotReady is returned by operations on a nil or closed Client.
	ErrClientNotReady = errors.New("client not ready")
	// ErrNoURLOpener is returned by Login when no URL opener is configured.
	ErrNoURLOpener = errors.New("no url opener configured")
	// ErrMalformedDeepLink marks an inbound link that could not be parsed.
	ErrMalformedDeepLink = errors.New("malformed deep link")
	// ErrMissingSessionID marks an inbound link without a session_id parameter.
	ErrMissingSessionID = errors.New("deep link has no session_id")
	// ErrCredentialStore wraps failures of the configured credential store.
	ErrCredentialStore = errors.New("credential store failure")
	// ErrInvalidConfig wraps Config.Validate failures.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrBuilderUsed is returned by a second call to Builder.Build.
	ErrBuilderUsed = errors.New("builder already used")
)
