package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
)

// record is the JSON shape persisted under the user key.
type record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// createScript claims the email index and writes the record in one atomic
// step. Returns 0 when the email is already taken.
var createScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2])
return 1
`)

// Store is a Redis-backed credential store. Safe for concurrent use.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the default "gosession:" key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Store on top of an existing Redis client. The client's
// lifecycle belongs to the caller.
func New(client redis.UniversalClient, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("redisstore: nil client")
	}
	s := &Store{
		client: client,
		prefix: "gosession:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) userKey(id string) string {
	return s.prefix + "user:" + id
}

// emailKey builds the index key for an email exactly as stored; uniqueness is
// case-sensitive.
func (s *Store) emailKey(email string) string {
	return s.prefix + "email:" + email
}

// Create inserts a new record, rejecting duplicate emails atomically via
// [createScript].
func (s *Store) Create(ctx context.Context, input goSession.CreateUserInput) (goSession.UserRecord, error) {
	rec := record{
		ID:           input.ID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    input.CreatedAt,
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return goSession.UserRecord{}, fmt.Errorf("redisstore: encode record: %w", err)
	}

	created, err := createScript.Run(ctx, s.client,
		[]string{s.emailKey(input.Email), s.userKey(input.ID)},
		input.ID, payload,
	).Int()
	if err != nil {
		return goSession.UserRecord{}, fmt.Errorf("redisstore: create: %w", err)
	}
	if created == 0 {
		return goSession.UserRecord{}, goSession.ErrDuplicateEmail
	}

	return toUserRecord(rec), nil
}

// FindByEmail resolves the email index and loads the record it points at.
func (s *Store) FindByEmail(ctx context.Context, email string) (goSession.UserRecord, error) {
	id, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return goSession.UserRecord{}, goSession.ErrUserNotFound
	}
	if err != nil {
		return goSession.UserRecord{}, fmt.Errorf("redisstore: email lookup: %w", err)
	}
	return s.FindByID(ctx, id)
}

// FindByID loads the record stored under id.
func (s *Store) FindByID(ctx context.Context, id string) (goSession.UserRecord, error) {
	payload, err := s.client.Get(ctx, s.userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return goSession.UserRecord{}, goSession.ErrUserNotFound
	}
	if err != nil {
		return goSession.UserRecord{}, fmt.Errorf("redisstore: id lookup: %w", err)
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return goSession.UserRecord{}, fmt.Errorf("redisstore: decode record: %w", err)
	}
	return toUserRecord(rec), nil
}

// UpdatePasswordHash rewrites the stored record with a new hash. Called by
// the Controller through an optional interface when a cost upgrade is due.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	rec := record{
		ID:           existing.ID,
		Name:         existing.Name,
		Email:        existing.Email,
		PasswordHash: hash,
		CreatedAt:    existing.CreatedAt,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redisstore: encode record: %w", err)
	}
	if err := s.client.Set(ctx, s.userKey(id), payload, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: update: %w", err)
	}
	return nil
}

// Delete removes the record and its email index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.userKey(id), s.emailKey(existing.Email)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection, for startup health checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisstore: ping: %w", err)
	}
	return nil
}

func toUserRecord(rec record) goSession.UserRecord {
	return goSession.UserRecord{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}
}
