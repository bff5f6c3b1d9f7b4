// Package goSession implements credential issuance and session renewal: user
// registration, password login, and a short-lived JWT access token paired with
// a long-lived, rotatable JWT refresh token intended for delivery through a
// guarded cookie.
//
// The package is designed for concurrent server workloads: Controller methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (Identity, Session, AuditEvent, MetricsSnapshot).
// Token signing lives in token/, password hashing in password/, and credential
// persistence behind the [CredentialStore] interface. The library ships
// store/memstore and store/redisstore implementations but never depends on
// either.
//
// # Token lifecycle
//
// Access and refresh tokens are stateless bearer credentials signed with
// separate secrets. They are created together as one logical pair, verified
// per request, and replaced as a pair on refresh. There is no server-side
// revocation: logout clears the client cookie only, and a rotated-out refresh
// token stays valid until its natural expiry. Callers that need revocation
// must layer it on top.
//
// # What this package must NOT do
//
//   - Expose password hashes or signing secrets through any public value.
//   - Return any token on a non-success path, or one half of a pair.
//   - Recover the authenticated identity from ambient request state; the
//     verifier returns it as an explicit value.
package goSession
