// Package api is the single point of egress from a goUmroh client to the
// storefront backend (base path /api).
//
// # Request pipeline
//
// Every request sent through [Client] passes a [BearerTransport] which reads
// the session token fresh from a [TokenSource] and attaches it as
// "Authorization: Bearer <token>". When no token exists the request is sent
// anonymously. A token rotated by the session manager is therefore picked up
// on the very next call without explicit propagation.
//
// Resource services ([PackageService], [BookingService], [PaymentService],
// [WishlistService], [CatalogService]) are thin typed wrappers: one HTTP verb,
// path and payload shape each. They return the decoded body or the failure
// unmodified; there is no retry and no local validation.
//
// [AuthService] is the exception: its calls bypass bearer injection and set
// their credentials explicitly, because the session flow decides which token
// (if any) to present.
//
// # What this package must NOT do
//
//   - Import goUmroh or session (credentials arrive through [TokenSource]).
//   - Cache the token between requests.
//   - Retry, or pre-check whether the caller is authenticated.
package api
