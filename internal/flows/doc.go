// Package flows contains pure-function orchestrators for the session
// operations of the root Client.
//
// Each flow function (RunBootstrap, RunLoginIntent, RunExchange, RunLogout)
// accepts a typed dependency struct and returns a result value. The root
// package owns state transitions, locking and logging; flows only sequence
// calls to the credential store and the backend.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goUmroh (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency functions.
package flows
