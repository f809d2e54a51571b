// Package goUmroh is a storefront client for the Umroh Hemat travel-booking
// API: a session manager driving the redirect-based login handshake, plus an
// authenticated request pipeline exposing the catalog, booking, payment and
// wishlist operations.
//
// A [Client] is built once through [Builder.Build] and is safe for concurrent
// use afterwards.
//
// # Architecture boundaries
//
// goUmroh is the public surface. It exposes [Client], [Builder], [Config] and
// value types ([User], [LoginIntent], [AuthState], MetricsSnapshot). Flow
// orchestration lives in internal/flows, credential persistence in session/,
// and HTTP plumbing in api/.
//
// # Session lifecycle
//
// Call [Client.Bootstrap] on process start to verify any persisted credential.
// [Client.Login] hands the authorization URL to the configured [URLOpener] and
// returns immediately; the provider's redirect comes back as a deep link that
// is delivered with [Client.HandleDeepLink] or through [Client.Listen].
// [Client.Logout] always leaves no persisted credential behind.
//
// Failures of startup verification and of the deep-link exchange are logged
// and resolve to the fallback state. They are never returned to the caller.
package goUmroh
