package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return store, mr
}

func input(id, email string) goSession.CreateUserInput {
	return goSession.CreateUserInput{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestNewRejectsNilClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected nil client to be rejected")
	}
}

func TestCreateAndFindRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, input("u1", "alice@example.com"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byID, err := store.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if byID.Email != created.Email || byID.PasswordHash != created.PasswordHash {
		t.Fatalf("record mismatch: %+v vs %+v", byID, created)
	}

	byEmail, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if byEmail.ID != "u1" {
		t.Fatalf("email index resolved wrong id: %s", byEmail.ID)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, input("u1", "alice@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := store.Create(ctx, input("u2", "alice@example.com"))
	if !errors.Is(err, goSession.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// The losing create must not have clobbered the winner's record.
	record, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if record.ID != "u1" {
		t.Fatalf("winner overwritten: %s", record.ID)
	}
}

func TestEmailUniquenessIsCaseSensitive(t *testing.T) {
	// Emails are unique exactly as stored; a differently cased address is a
	// distinct account.
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, input("u1", "Alice@Example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.FindByEmail(ctx, "alice@example.com"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("expected exact-match lookup to miss, got %v", err)
	}
	if _, err := store.Create(ctx, input("u2", "alice@example.com")); err != nil {
		t.Fatalf("differently cased email rejected: %v", err)
	}
}

func TestFindMisses(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, input("u1", "alice@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.UpdatePasswordHash(ctx, "u1", "new-hash"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}

	record, err := store.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if record.PasswordHash != "new-hash" {
		t.Fatalf("hash not updated: %q", record.PasswordHash)
	}
	if record.Email != "alice@example.com" {
		t.Fatal("update clobbered other fields")
	}
}

func TestDeleteRemovesBothKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, input("u1", "alice@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.FindByID(ctx, "u1"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("record still present: %v", err)
	}
	if _, err := store.FindByEmail(ctx, "alice@example.com"); !errors.Is(err, goSession.ErrUserNotFound) {
		t.Fatalf("email index still present: %v", err)
	}

	if _, err := store.Create(ctx, input("u2", "alice@example.com")); err != nil {
		t.Fatalf("re-create after delete failed: %v", err)
	}
}

func TestCustomPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client, WithPrefix("custom:"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if _, err := store.Create(ctx, input("u1", "alice@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !mr.Exists("custom:user:u1") {
		t.Fatal("user key not written under custom prefix")
	}
	if !mr.Exists("custom:email:alice@example.com") {
		t.Fatal("email key not written under custom prefix")
	}
}

func TestPing(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	mr.Close()
	if err := store.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail after shutdown")
	}
}
