// Package redisstore is a Redis-backed goSession.CredentialStore. Account
// records are stored as JSON under a per-id key with a secondary email index;
// the create path runs as a Lua script so email uniqueness is enforced
// atomically on the server, not by a read-then-write race in the client.
//
// # Architecture boundaries
//
// redisstore persists credential records and nothing else. Tokens are never
// written to Redis: sessions in this library are stateless by design, and a
// store that started tracking them would silently change the revocation
// semantics documented on the root package.
package redisstore
