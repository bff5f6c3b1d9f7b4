package goSession

import (
	"context"
	"time"
)

// Identity is the outward-facing view of an account. It never carries the
// password hash.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// UserRecord is the full account record persisted by a [CredentialStore].
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity projects the record onto its outward-facing view.
func (u UserRecord) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}

// CreateUserInput is the input for [CredentialStore.Create]. The ID is
// generated by the Controller before the store call and is immutable once
// assigned.
type CreateUserInput struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialStore is the persistence collaborator the Controller is built
// against. Implementations must reject a duplicate email atomically at the
// storage layer with [ErrDuplicateEmail] (the Controller's own pre-check is
// an optimization, not the correctness guarantee) and must return
// [ErrUserNotFound] when a lookup misses.
//
// The library ships store/memstore and store/redisstore implementations.
type CredentialStore interface {
	Create(ctx context.Context, input CreateUserInput) (UserRecord, error)
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	FindByID(ctx context.Context, id string) (UserRecord, error)
}

// Session pairs one access token and one refresh token issued together for an
// identity. The pair is replaced atomically on refresh; no two sessions share
// state. Sessions are values, never persisted.
type Session struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
}

// SignUpRequest is the input for [Controller.SignUp].
type SignUpRequest struct {
	Name     string
	Email    string
	Password string
}

// TokenSource names the transport channel a token arrived on. Refresh tokens
// are only ever accepted from [SourceCookie]; this is a transport-binding
// invariant, not a claims check.
type TokenSource uint8

const (
	// SourceBearer marks a token taken from an Authorization header.
	SourceBearer TokenSource = iota
	// SourceCookie marks a token taken from the dedicated refresh cookie.
	SourceCookie
)
