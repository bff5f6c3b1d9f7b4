package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goSession "github.com/MrEthical07/goSession"
)

// HandlerFunc is a protected handler. The identity the access token resolved
// to is passed explicitly; handlers never dig it out of the request context.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, identity goSession.Identity)

// Guard wraps next with access-token verification. The token is read from the
// Authorization header as a Bearer credential; a missing, malformed, expired,
// or unverifiable token ends the request with 401 before next runs.
//
// The request context is annotated with the client IP and User-Agent so the
// Controller's audit events carry them.
func Guard(controller *goSession.Controller, next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := annotate(r)

		tokenStr, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		identity, err := controller.VerifyAccess(ctx, tokenStr)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(ctx), *identity)
	}
}

// Annotate returns a copy of the request with the client IP and User-Agent
// recorded on its context, for handlers that call the Controller outside
// Guard (login, refresh, sign-up).
func Annotate(r *http.Request) *http.Request {
	return r.WithContext(annotate(r))
}

func annotate(r *http.Request) context.Context {
	c := r.Context()
	c = goSession.WithClientIP(c, clientIP(r))
	if ua := r.UserAgent(); ua != "" {
		c = goSession.WithUserAgent(c, ua)
	}
	return c
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func clientIP(r *http.Request) string {
	// Trust X-Forwarded-For only as far as its first hop.
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return host
}

// StatusForError maps a Controller error to an HTTP status code. Transports
// that render their own error bodies can use it directly.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, goSession.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, goSession.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, goSession.ErrSignUpInvalid):
		return http.StatusBadRequest
	case errors.Is(err, goSession.ErrUnauthorized),
		errors.Is(err, goSession.ErrTokenInvalid),
		errors.Is(err, goSession.ErrTokenExpired),
		errors.Is(err, goSession.ErrTokenMalformed):
		return http.StatusUnauthorized
	case errors.Is(err, goSession.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
