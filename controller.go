package goSession

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/token"
)

// Controller orchestrates sign-up, login, refresh, and verification by
// composing the credential store, the password hasher, and the token manager.
// Controllers are configured through [Builder.Build] and treated as immutable
// afterwards; all methods are safe for concurrent use.
//
// The per-request state machine is Unauthenticated → Authenticated(access) →
// Authenticated(access, refreshable); nothing is persisted between requests,
// and the Controller never retries a failed store call; retry policy belongs
// to the caller.
type Controller struct {
	config  Config
	store   CredentialStore
	hasher  *password.Hasher
	tokens  *token.Manager
	audit   *auditDispatcher
	metrics *Metrics
}

// Close flushes and stops the audit dispatcher. It is safe to call on a nil
// Controller and safe to call more than once.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (c *Controller) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// CookieConfig returns the refresh-cookie settings the Controller was built
// with, for use by transport adapters.
func (c *Controller) CookieConfig() CookieConfig {
	return c.config.Cookie
}

// RefreshTTL reports the configured refresh-token lifetime, which doubles as
// the refresh cookie's max age.
func (c *Controller) RefreshTTL() time.Duration {
	return c.config.Token.RefreshTTL
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// SignUp registers a new account and logs it in: the password is hashed, the
// record is created with a freshly generated id, and a token pair is issued.
//
// A taken email fails with [ErrEmailTaken]. The FindByEmail pre-check below
// is an optimization only; the store's atomic duplicate rejection on Create
// is what makes concurrent sign-ups with the same email safe.
func (c *Controller) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	if c == nil || c.hasher == nil || c.store == nil {
		return nil, ErrControllerNotReady
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.metricInc(MetricSignUpFailure)
		c.emitAudit(ctx, auditEventSignUpFailure, false, "", req.Email, ErrSignUpInvalid, func() map[string]string {
			return map[string]string{
				"reason": "empty_field",
			}
		})
		return nil, ErrSignUpInvalid
	}

	_, err := c.store.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		c.metricInc(MetricSignUpDuplicate)
		c.emitAudit(ctx, auditEventSignUpDuplicate, false, "", req.Email, ErrEmailTaken, nil)
		return nil, ErrEmailTaken
	case errors.Is(err, ErrUserNotFound):
		// Expected path: the email is free.
	default:
		c.metricInc(MetricSignUpFailure)
		c.emitAudit(ctx, auditEventSignUpFailure, false, "", req.Email, ErrStoreUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "store_lookup_failed",
			}
		})
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	passwordHash, err := c.hasher.Hash(req.Password)
	if err != nil {
		c.metricInc(MetricSignUpFailure)
		c.emitAudit(ctx, auditEventSignUpFailure, false, "", req.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "hash_failed",
			}
		})
		return nil, err
	}

	created, err := c.store.Create(ctx, CreateUserInput{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			c.metricInc(MetricSignUpDuplicate)
			c.emitAudit(ctx, auditEventSignUpDuplicate, false, "", req.Email, ErrEmailTaken, nil)
			return nil, ErrEmailTaken
		}
		c.metricInc(MetricSignUpFailure)
		c.emitAudit(ctx, auditEventSignUpFailure, false, "", req.Email, ErrStoreUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "store_create_failed",
			}
		})
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	identity := created.Identity()
	access, refresh, err := c.issuePair(identity)
	if err != nil {
		c.metricInc(MetricSignUpFailure)
		c.emitAudit(ctx, auditEventSignUpFailure, false, identity.ID, identity.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "issue_pair_failed",
			}
		})
		return nil, err
	}

	c.metricInc(MetricSignUpSuccess)
	c.emitAudit(ctx, auditEventSignUpSuccess, true, identity.ID, identity.Email, nil, nil)

	return &Session{Identity: identity, AccessToken: access, RefreshToken: refresh}, nil
}

// Login authenticates an email/password pair and issues a fresh token pair.
//
// An unknown email fails with [ErrUserNotFound]; a mismatched password with
// [ErrUnauthorized]. Distinguishing the two is a deliberate usability choice;
// see DESIGN.md for the trade-off.
func (c *Controller) Login(ctx context.Context, email, plaintext string) (*Session, error) {
	if c == nil || c.hasher == nil || c.store == nil {
		return nil, ErrControllerNotReady
	}
	if plaintext == "" {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrUnauthorized, func() map[string]string {
			return map[string]string{
				"reason": "empty_password",
			}
		})
		return nil, ErrUnauthorized
	}

	user, err := c.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.metricInc(MetricLoginFailure)
			c.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrUserNotFound, func() map[string]string {
				return map[string]string{
					"reason": "unknown_email",
				}
			})
			return nil, ErrUserNotFound
		}
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrStoreUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "store_lookup_failed",
			}
		})
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if !c.hasher.Compare(plaintext, user.PasswordHash) {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, user.ID, email, ErrUnauthorized, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return nil, ErrUnauthorized
	}

	if c.config.Password.UpgradeOnLogin && c.hasher.NeedsRehash(user.PasswordHash) {
		// Rehash is best-effort and must not block a successful login; the
		// CredentialStore interface has no update operation, so stores that
		// support upgrades expose one out of band.
		if upgraded, err := c.hasher.Hash(plaintext); err == nil {
			if up, ok := c.store.(interface {
				UpdatePasswordHash(ctx context.Context, id, hash string) error
			}); ok {
				if err := up.UpdatePasswordHash(ctx, user.ID, upgraded); err != nil {
					log.Print("goSession: password hash upgrade update failed")
				}
			}
		} else {
			log.Print("goSession: password hash upgrade generation failed")
		}
	}

	identity := user.Identity()
	access, refresh, err := c.issuePair(identity)
	if err != nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, identity.ID, email, err, func() map[string]string {
			return map[string]string{
				"reason": "issue_pair_failed",
			}
		})
		return nil, err
	}

	c.metricInc(MetricLoginSuccess)
	c.emitAudit(ctx, auditEventLoginSuccess, true, identity.ID, identity.Email, nil, nil)

	return &Session{Identity: identity, AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates a presented access token and resolves the identity
// it was issued to. This is the hot path for protected requests.
//
// Failure modes: [ErrTokenMalformed], [ErrTokenExpired], [ErrTokenInvalid]
// from verification, and [ErrUnauthorized] when the subject no longer exists.
// Tokens are not invalidated by account deletion, so this lookup is the only
// enforcement point.
func (c *Controller) VerifyAccess(ctx context.Context, accessToken string) (*Identity, error) {
	if c == nil || c.tokens == nil || c.store == nil {
		return nil, ErrControllerNotReady
	}
	if c.metrics != nil && c.metrics.LatencyEnabled() {
		start := time.Now()
		defer c.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	claims, err := c.tokens.Verify(token.Access, accessToken)
	if err != nil {
		c.metricInc(MetricVerifyFailure)
		return nil, mapTokenError(err)
	}

	identity, err := c.resolveIdentity(ctx, claims.Subject)
	if err != nil {
		c.metricInc(MetricVerifyFailure)
		return nil, err
	}

	c.metricInc(MetricVerifySuccess)
	return &identity, nil
}

// issuePair mints the access and refresh tokens as one logical unit: if
// signing the second token fails, the first is never surfaced.
func (c *Controller) issuePair(identity Identity) (string, string, error) {
	access, err := c.tokens.Issue(token.Access, identity.ID, identity.Email)
	if err != nil {
		return "", "", mapTokenError(err)
	}

	refresh, err := c.tokens.Issue(token.Refresh, identity.ID, identity.Email)
	if err != nil {
		return "", "", mapTokenError(err)
	}

	c.metricInc(MetricPairIssued)
	return access, refresh, nil
}

// resolveIdentity looks up the token subject in the credential store. A
// missing user maps to ErrUnauthorized: the account may have been deleted
// after the token was issued.
func (c *Controller) resolveIdentity(ctx context.Context, subject string) (Identity, error) {
	user, err := c.store.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return user.Identity(), nil
}

func mapTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrMalformed):
		return ErrTokenMalformed
	case errors.Is(err, token.ErrMissingSecret):
		return ErrMissingSecret
	default:
		return ErrTokenInvalid
	}
}
