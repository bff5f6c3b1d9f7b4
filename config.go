package goSession

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config carries all process-wide settings. It is loaded once at startup,
// validated by [Builder.Build], and never mutated afterwards; the Controller
// holds its own defensive copy.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Cookie   CookieConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the signing secrets and expiry policies for the two
// token kinds. Access and refresh secrets must both be set and must differ.
type TokenConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig configures the bcrypt hasher.
type PasswordConfig struct {
	Cost           int
	UpgradeOnLogin bool
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig describes the refresh-token cookie the middleware package
// writes. The defaults (HttpOnly, Secure, SameSite=Strict) are the attributes
// the refresh channel requires; relax them only for local development.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: 15 minute access tokens,
// 7 day refresh tokens, bcrypt cost 10, and a strict refresh cookie. Signing
// secrets are intentionally left empty and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Cost: bcrypt.DefaultCost,
		},
		Cookie: CookieConfig{
			Name:     "refresh_token",
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for startup-fatal problems. A missing or
// shared signing secret is rejected here rather than surfacing per request.
func (c Config) Validate() error {
	if len(c.Token.AccessSecret) == 0 {
		return fmt.Errorf("access: %w", ErrMissingSecret)
	}
	if len(c.Token.RefreshSecret) == 0 {
		return fmt.Errorf("refresh: %w", ErrMissingSecret)
	}
	if bytes.Equal(c.Token.AccessSecret, c.Token.RefreshSecret) {
		return ErrSecretsShared
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("refresh TTL must be positive")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("invalid leeway configuration")
	}
	if c.Password.Cost < bcrypt.MinCost || c.Password.Cost > bcrypt.MaxCost {
		return errors.New("bcrypt cost out of range")
	}
	if c.Cookie.Name == "" {
		return errors.New("cookie name must be set")
	}
	return nil
}

// FromEnv builds a Config from the process environment on top of
// [DefaultConfig]:
//
//	AUTH_ACCESS_SECRET   access-token signing secret (required)
//	AUTH_REFRESH_SECRET  refresh-token signing secret (required)
//	AUTH_ACCESS_TTL      access expiry, Go duration (default 15m)
//	AUTH_REFRESH_TTL     refresh expiry, Go duration (default 168h)
//	AUTH_COOKIE_NAME     refresh cookie name (default refresh_token)
//	AUTH_COOKIE_SECURE   "false" disables the Secure attribute
//
// The result is validated; a missing secret fails here, at startup.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Token.AccessSecret = []byte(os.Getenv("AUTH_ACCESS_SECRET"))
	cfg.Token.RefreshSecret = []byte(os.Getenv("AUTH_REFRESH_SECRET"))

	if v := os.Getenv("AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("AUTH_ACCESS_TTL: %w", err)
		}
		cfg.Token.AccessTTL = d
	}
	if v := os.Getenv("AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("AUTH_REFRESH_TTL: %w", err)
		}
		cfg.Token.RefreshTTL = d
	}
	if v := os.Getenv("AUTH_COOKIE_NAME"); v != "" {
		cfg.Cookie.Name = v
	}
	if v := os.Getenv("AUTH_COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("AUTH_COOKIE_SECURE: %w", err)
		}
		cfg.Cookie.Secure = secure
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.AccessSecret = cloneBytes(cfg.Token.AccessSecret)
	out.Token.RefreshSecret = cloneBytes(cfg.Token.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
