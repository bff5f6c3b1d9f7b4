// Package token issues and verifies the two JWT kinds used by goSession:
// short-lived access tokens and long-lived refresh tokens. The kinds share a
// claim shape and differ only in which secret signs them and which expiry
// policy applies; [Kind] selects both at the call site.
//
// # Architecture boundaries
//
// This package owns signing and verification only. Identity resolution,
// channel binding for refresh tokens, and pair issuance live in the
// Controller.
//
// # What this package must NOT do
//
//   - Accept a token of one kind under the other kind's secret.
//   - Expose signing secrets after construction.
//   - Perform I/O. Every operation is pure CPU.
package token
