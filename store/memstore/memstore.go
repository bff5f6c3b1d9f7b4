package memstore

import (
	"context"
	"sync"

	goSession "github.com/MrEthical07/goSession"
)

// Store is an in-memory credential store. The zero value is not usable; use
// [New]. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]goSession.UserRecord
	byEmail map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		byID:    make(map[string]goSession.UserRecord),
		byEmail: make(map[string]string),
	}
}

// Create inserts a new record. The email-uniqueness check and the insert
// happen under one lock, so concurrent sign-ups with the same email cannot
// both succeed. Emails are compared exactly as stored, case-sensitively.
func (s *Store) Create(ctx context.Context, input goSession.CreateUserInput) (goSession.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return goSession.UserRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[input.Email]; exists {
		return goSession.UserRecord{}, goSession.ErrDuplicateEmail
	}

	record := goSession.UserRecord{
		ID:           input.ID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    input.CreatedAt,
	}

	s.byID[record.ID] = record
	s.byEmail[record.Email] = record.ID

	return record, nil
}

// FindByEmail looks a record up by exact email match.
func (s *Store) FindByEmail(ctx context.Context, email string) (goSession.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return goSession.UserRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return goSession.UserRecord{}, goSession.ErrUserNotFound
	}
	return s.byID[id], nil
}

// FindByID looks a record up by id.
func (s *Store) FindByID(ctx context.Context, id string) (goSession.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return goSession.UserRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byID[id]
	if !ok {
		return goSession.UserRecord{}, goSession.ErrUserNotFound
	}
	return record, nil
}

// UpdatePasswordHash replaces the stored hash for id. The Controller calls
// this through an optional interface when a cost upgrade is due.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return goSession.ErrUserNotFound
	}
	record.PasswordHash = hash
	s.byID[id] = record
	return nil
}

// Delete removes a record by id. Tokens already issued for the account stay
// structurally valid; VerifyAccess and Refresh reject them when the lookup
// misses.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return goSession.ErrUserNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, record.Email)
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
