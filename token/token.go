package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingSecret is returned by [NewManager] and [Manager.Issue] when
	// the secret for the requested kind is unset.
	ErrMissingSecret = errors.New("token: signing secret not configured")
	// ErrMalformed is returned when a token cannot be parsed or its claims
	// are absent.
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired is returned when a token is past its expiry.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid is returned when the signature does not verify, or on any
	// validation failure not covered by a more specific error.
	ErrInvalid = errors.New("token: invalid")
	// ErrUnknownKind is returned when a [Kind] outside {Access, Refresh} is
	// presented.
	ErrUnknownKind = errors.New("token: unknown kind")
)

// Kind selects which secret and expiry policy apply to an operation. It is an
// explicit tagged variant: there is no per-kind type, only per-kind
// configuration dispatched on this value.
type Kind uint8

const (
	// Access is the short-lived, stateless kind sent in-band per request.
	Access Kind = iota
	// Refresh is the long-lived kind delivered only via the guarded cookie
	// and used solely to mint new token pairs.
	Refresh
)

func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case Refresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Claims is the fixed claim shape carried by both kinds: subject (user id),
// email, issued-at, and expiry. Tokens whose structure does not match are
// rejected at parse time.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Config carries the per-kind secrets and TTLs. Both secrets must be set and
// must differ; [NewManager] enforces this so a misconfiguration fails at
// startup rather than per request.
type Config struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Manager signs and verifies tokens. It is immutable after construction and
// safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("token: invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a token of the given kind for the user. It is a pure function
// of its inputs and the manager's configuration.
func (m *Manager) Issue(kind Kind, userID, email string) (string, error) {
	secret, ttl, err := m.kindParams(kind)
	if err != nil {
		return "", err
	}

	// The jti makes every signed token unique even when two are minted for
	// the same user within the same second; iat/exp alone cannot, and a
	// rotation must never hand back the token it was given.
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    m.config.Issuer,
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks the token's signature against the secret for kind and its
// expiry against the current time, then returns the parsed claims.
//
// Failure modes: [ErrMalformed] when the token or its claims cannot be
// parsed, [ErrExpired] on expiry, [ErrInvalid] on a bad signature or any
// other validation failure. A token signed with the other kind's secret fails
// with [ErrInvalid]; secret separation is the only thing distinguishing the
// kinds on the wire.
func (m *Manager) Verify(kind Kind, tokenStr string) (*Claims, error) {
	secret, _, err := m.kindParams(kind)
	if err != nil {
		return nil, err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(
		tokenStr,
		&Claims{},
		func(*jwt.Token) (interface{}, error) { return secret, nil },
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrInvalid
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

// TTL reports the configured lifetime for kind. Unknown kinds report zero.
func (m *Manager) TTL(kind Kind) time.Duration {
	_, ttl, err := m.kindParams(kind)
	if err != nil {
		return 0
	}
	return ttl
}

func (m *Manager) kindParams(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case Access:
		if len(m.config.AccessSecret) == 0 {
			return nil, 0, ErrMissingSecret
		}
		return m.config.AccessSecret, m.config.AccessTTL, nil
	case Refresh:
		if len(m.config.RefreshSecret) == 0 {
			return nil, 0, ErrMissingSecret
		}
		return m.config.RefreshSecret, m.config.RefreshTTL, nil
	default:
		return nil, 0, ErrUnknownKind
	}
}
