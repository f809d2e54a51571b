// Package sandbox is an in-process stand-in for the storefront backend and its
// identity provider.
//
// It serves the same /api contract the client consumes, keeping catalog,
// bookings, payments and wishlists in memory. One-time login ids and session
// records live in Redis; session tokens are HS256 JWTs. GET /authorize plays
// the identity provider: it mints a login id and redirects to the caller's
// redirect URL with session_id appended.
package sandbox
