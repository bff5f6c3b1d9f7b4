package goSession

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignUpSuccess       = "signup_success"
	auditEventSignUpDuplicate     = "signup_duplicate"
	auditEventSignUpFailure       = "signup_failure"
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventRefreshSuccess      = "refresh_success"
	auditEventRefreshInvalid      = "refresh_invalid"
	auditEventRefreshWrongChannel = "refresh_wrong_channel"
	auditEventLogout              = "logout"
)

type auditErrorCode string

const (
	auditErrUnauthorized   auditErrorCode = "unauthorized"
	auditErrUserNotFound   auditErrorCode = "user_not_found"
	auditErrDuplicate      auditErrorCode = "duplicate"
	auditErrTokenInvalid   auditErrorCode = "invalid_token"
	auditErrTokenExpired   auditErrorCode = "token_expired"
	auditErrTokenMalformed auditErrorCode = "malformed_token"
	auditErrInvalidRequest auditErrorCode = "invalid_request"
	auditErrUnavailable    auditErrorCode = "backend_unavailable"
	auditErrInternal       auditErrorCode = "internal_error"
)

func codeForAuditError(err error) auditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenMalformed):
		return auditErrTokenMalformed
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrSignUpInvalid):
		return auditErrInvalidRequest
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

func (c *Controller) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := codeForAuditError(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}
