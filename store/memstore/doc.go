// Package memstore is an in-memory goSession.CredentialStore backed by a
// mutex-guarded map. It is intended for tests, examples, and single-process
// tools; records do not survive a restart.
//
// # Architecture boundaries
//
// memstore implements persistence only. It never hashes passwords, never
// inspects tokens, and never decides policy. Duplicate emails and missing
// users are reported with the sentinel errors the root package defines, and
// everything above that is the Controller's business.
package memstore
