package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/token"
)

// Refresh rotates a token pair: the presented refresh token is verified
// against the refresh secret, the identity resolved, and a brand-new access
// and refresh token issued together. The caller replaces the refresh cookie
// with the returned token.
//
// The source argument enforces the transport binding: a correctly signed
// refresh token presented anywhere but the cookie channel fails with
// [ErrUnauthorized], and its claims are never inspected in that case.
//
// Rotation does not invalidate the previous refresh token; with no
// server-side token state, it remains usable until natural expiry. This is a
// documented scope limitation, not an oversight.
func (c *Controller) Refresh(ctx context.Context, refreshToken string, source TokenSource) (*Session, error) {
	return c.rotate(ctx, refreshToken, source, "refresh")
}

// Resume is the session-resume entry point used on application load. Its
// contract is identical to [Controller.Refresh]: verify the cookie-sourced
// refresh token, resolve the identity, and mint a fresh pair.
func (c *Controller) Resume(ctx context.Context, refreshToken string, source TokenSource) (*Session, error) {
	return c.rotate(ctx, refreshToken, source, "resume")
}

func (c *Controller) rotate(ctx context.Context, refreshToken string, source TokenSource, operation string) (*Session, error) {
	if c == nil || c.tokens == nil || c.store == nil {
		return nil, ErrControllerNotReady
	}

	if source != SourceCookie {
		c.metricInc(MetricRefreshWrongChannel)
		c.metricInc(MetricRefreshFailure)
		c.emitAudit(ctx, auditEventRefreshWrongChannel, false, "", "", ErrUnauthorized, func() map[string]string {
			return map[string]string{
				"operation": operation,
			}
		})
		return nil, ErrUnauthorized
	}

	claims, err := c.tokens.Verify(token.Refresh, refreshToken)
	if err != nil {
		mapped := mapTokenError(err)
		c.metricInc(MetricRefreshFailure)
		c.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", mapped, func() map[string]string {
			return map[string]string{
				"operation": operation,
				"reason":    "verify_failed",
			}
		})
		return nil, mapped
	}

	identity, err := c.resolveIdentity(ctx, claims.Subject)
	if err != nil {
		c.metricInc(MetricRefreshFailure)
		c.emitAudit(ctx, auditEventRefreshInvalid, false, claims.Subject, claims.Email, err, func() map[string]string {
			return map[string]string{
				"operation": operation,
				"reason":    "identity_unresolved",
			}
		})
		return nil, err
	}

	access, refresh, err := c.issuePair(identity)
	if err != nil {
		c.metricInc(MetricRefreshFailure)
		c.emitAudit(ctx, auditEventRefreshInvalid, false, identity.ID, identity.Email, err, func() map[string]string {
			return map[string]string{
				"operation": operation,
				"reason":    "issue_pair_failed",
			}
		})
		return nil, err
	}

	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(ctx, auditEventRefreshSuccess, true, identity.ID, identity.Email, nil, func() map[string]string {
		return map[string]string{
			"operation": operation,
		}
	})

	return &Session{Identity: identity, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout is a stateless no-op signal: no token is tracked server-side, so
// none can be revoked. The transport layer clears the refresh cookie (see
// middleware.ClearRefreshCookie); a previously issued refresh token remains
// valid until its natural expiry.
func (c *Controller) Logout(ctx context.Context) error {
	if c == nil {
		return ErrControllerNotReady
	}
	c.metricInc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, true, "", "", nil, nil)
	return nil
}
