package goSession

import (
	"errors"
	"testing"
)

func TestBuildRequiresStore(t *testing.T) {
	_, err := New().WithConfig(testConfig()).Build()
	if err == nil {
		t.Fatal("expected build to fail without a credential store")
	}
}

func TestBuildRequiresSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.Token.AccessSecret = nil

	_, err := New().
		WithConfig(cfg).
		WithCredentialStore(newMockStore()).
		Build()
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestBuildRejectsSharedSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.Token.RefreshSecret = append([]byte(nil), cfg.Token.AccessSecret...)

	_, err := New().
		WithConfig(cfg).
		WithCredentialStore(newMockStore()).
		Build()
	if !errors.Is(err, ErrSecretsShared) {
		t.Fatalf("expected ErrSecretsShared, got %v", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	builder := New().
		WithConfig(testConfig()).
		WithCredentialStore(newMockStore())

	controller, err := builder.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer controller.Close()

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildCopiesConfig(t *testing.T) {
	cfg := testConfig()

	controller, err := New().
		WithConfig(cfg).
		WithCredentialStore(newMockStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer controller.Close()

	// Mutating the caller's secret after Build must not affect the controller.
	cfg.Token.AccessSecret[0] ^= 0xFF
	cfg.Cookie.Name = "mutated"

	if controller.CookieConfig().Name != "refresh_token" {
		t.Fatal("controller shares the caller's config")
	}
}
