package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Config carries the bcrypt work factor. The zero value is invalid; use
// [bcrypt.DefaultCost] (10) unless you have measured otherwise.
type Config struct {
	Cost int
}

// Hasher is an immutable bcrypt hasher, safe for concurrent use.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, errors.New("password: bcrypt cost out of range")
	}
	return &Hasher{config: cfg}, nil
}

// Hash returns the bcrypt hash of plaintext with a fresh random salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.config.Cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare reports whether plaintext matches the stored hash. A mismatch is
// not an error condition: the result is simply false, including for hashes
// that cannot be parsed at all.
func (h *Hasher) Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// NeedsRehash reports whether the stored hash was produced with a lower cost
// than the hasher is configured for. Unparseable hashes report false; they
// will fail Compare anyway.
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost < h.config.Cost
}
