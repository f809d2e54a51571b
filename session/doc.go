// Package session provides durable persistence for the single session
// credential held by a goUmroh client, plus the compact binary record format
// used to store it.
//
// # Binary encoding
//
// Credentials are stored as a versioned binary record (schema versions v1–v2)
// with forward migration on read. The encoder is append-only: new versions add
// fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns the [Store] implementations ([FileStore], [RedisStore],
// [MemoryStore]) and the [Credential] model. Deciding when a credential is
// discarded belongs to the Client.
//
// # What this package must NOT do
//
//   - Import goUmroh or api (no upward imports).
//   - Interpret the token; it is an opaque string.
//   - Hold more than one credential per store (single-session model).
package session
