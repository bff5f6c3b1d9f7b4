package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

func input(id, email string) goSession.CreateUserInput {
	return goSession.CreateUserInput{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestCreateAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Create(ctx, input("u1", "alice@example.com"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != "u1" {
		t.Fatalf("unexpected id: %s", created.ID)
	}

	byEmail, err := s.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	byID, err := s.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if byEmail.ID != byID.ID {
		t.Fatal("lookups disagree")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Create(ctx, input("u1", "alice@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := s.Create(ctx, input("u2", "alice@example.com"))
	if !errors.Is(err, goSession.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestEmailUniquenessIsCaseSensitive(t *testing.T) {
	// Emails are unique exactly as stored; a differently cased address is a
	// distinct account.
	s := New()
	ctx := context.Background()

	if _, err := s.Create(ctx, input("u1", "Alice@Example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := s.FindByEmail(ctx, "alice@example.com"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("expected exact-match lookup to miss, got %v", err)
	}
	if _, err := s.Create(ctx, input("u2", "alice@example.com")); err != nil {
		t.Fatalf("differently cased email rejected: %v", err)
	}
}

func TestFindMisses(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.FindByID(ctx, "missing"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Create(ctx, input("u1", "alice@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.UpdatePasswordHash(ctx, "u1", "new-hash"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}
	record, err := s.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if record.PasswordHash != "new-hash" {
		t.Fatalf("hash not updated: %q", record.PasswordHash)
	}

	if err := s.UpdatePasswordHash(ctx, "missing", "x"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteFreesEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Create(ctx, input("u1", "alice@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.FindByID(ctx, "u1"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("record still present after delete: %v", err)
	}

	// The email is reusable after deletion.
	if _, err := s.Create(ctx, input("u2", "alice@example.com")); err != nil {
		t.Fatalf("re-create after delete failed: %v", err)
	}
}

func TestConcurrentCreateSameEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	const workers = 16
	var (
		wg         sync.WaitGroup
		successes  int64
		duplicates int64
		mu         sync.Mutex
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, input(fmt.Sprintf("u%d", i), "race@example.com"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, goSession.ErrDuplicateEmail):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d", successes)
	}
	if duplicates != workers-1 {
		t.Fatalf("expected %d duplicate rejections, got %d", workers-1, duplicates)
	}
}

func TestContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Create(ctx, input("u1", "alice@example.com")); err == nil {
		t.Fatal("expected cancelled context to fail")
	}
}
