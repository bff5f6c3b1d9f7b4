package goSession

import "errors"

var (
	// ErrEmailTaken is returned by [Controller.SignUp] when the email address
	// is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound is returned when no account matches the presented email
	// or id. Credential stores return it from FindByEmail/FindByID.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized covers a mismatched password, a refresh token presented
	// outside the cookie channel, and a token whose subject no longer exists.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTokenInvalid is returned when a token's signature does not verify
	// under the expected secret.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a structurally valid token is past its
	// expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when a token cannot be parsed or its
	// claims are absent.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrMissingSecret is returned at Build time when the access or refresh
	// signing secret is unset. This is a startup-fatal condition, never a
	// per-request one.
	ErrMissingSecret = errors.New("signing secret not configured")
	// ErrSecretsShared is returned at Build time when the access and refresh
	// secrets are identical. Secret separation is what keeps a leaked access
	// token from being replayed as a refresh token.
	ErrSecretsShared = errors.New("access and refresh secrets must differ")
	// ErrSignUpInvalid is returned by [Controller.SignUp] when a required
	// field is empty.
	ErrSignUpInvalid = errors.New("invalid sign-up request")
	// ErrStoreUnavailable wraps credential-store failures other than
	// not-found and duplicate.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrControllerNotReady is returned when a Controller method is called on
	// a nil or partially constructed receiver.
	ErrControllerNotReady = errors.New("controller not initialized")
	// ErrDuplicateEmail is returned by [CredentialStore.Create]
	// implementations on a duplicate email. The Controller maps it to
	// [ErrEmailTaken].
	ErrDuplicateEmail = errors.New("store duplicate email")
)
