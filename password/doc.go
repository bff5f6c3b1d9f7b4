// Package password implements password hashing and verification with bcrypt.
//
// Each hash embeds a per-call random salt, so hashing the same plaintext
// twice yields different outputs; [Hasher.Compare] accounts for this and runs
// in time independent of where a mismatch occurs.
//
// The [Hasher] supports transparent cost upgrades: if the stored hash was
// produced with a lower work factor, [Hasher.NeedsRehash] returns true so the
// caller can re-hash on the next successful login.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other goSession package.
//   - Log plaintext passwords at runtime.
package password
