package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by every token this service signs. Subject
// holds the user's email; ID and Roles are custom claims consumed by the
// session manager and scope checks.
type Claims struct {
	ID    uint64   `json:"id"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// PrimaryRole returns roles[0], the single role this system assigns per user.
func (c *Claims) PrimaryRole() string {
	if len(c.Roles) == 0 {
		return ""
	}
	return c.Roles[0]
}

// Lifetimes configures one time-to-live per token class. Values come from
// the *_TOKEN_TTL_MS environment variables.
type Lifetimes struct {
	Normal        time.Duration
	Refresh       time.Duration
	ResetPassword time.Duration
}

// ForClass returns the lifetime configured for the given token class.
func (l Lifetimes) ForClass(class string) time.Duration {
	switch class {
	case ClassRefresh:
		return l.Refresh
	case ClassResetPassword:
		return l.ResetPassword
	default:
		return l.Normal
	}
}

// Token classes. Each class gets its own lifetime; the class is embedded in
// the token claims and stored alongside the token row so refresh and reset
// tokens cannot be replayed as access tokens.
const (
	ClassNormal        = "NORMAL"
	ClassRefresh       = "REFRESH"
	ClassResetPassword = "RESET_PASSWORD"
)

const classClaim = "cls"

// Codec signs and verifies HS256 tokens. It is a pure function over claims
// and the secret; it performs no I/O.
type Codec struct {
	secret    []byte
	lifetimes Lifetimes
	now       func() time.Time
}

// NewCodec builds a Codec for the given signing secret and per-class
// lifetimes.
func NewCodec(secret string, lifetimes Lifetimes) *Codec {
	return &Codec{secret: []byte(secret), lifetimes: lifetimes, now: time.Now}
}

// IssuedToken is a signed token along with its class and expiry, the values
// the session manager persists in the token store.
type IssuedToken struct {
	Token     string
	Class     string
	ExpiresAt time.Time
}

// Issue signs a token of the given class for the user. iat is now and exp is
// now plus the class lifetime.
func (c *Codec) Issue(userID uint64, email, role, class string) (IssuedToken, error) {
	if email == "" {
		return IssuedToken{}, ErrTokenIllegalArgument
	}
	now := c.now().UTC()
	exp := now.Add(c.lifetimes.ForClass(class))
	claims := jwt.MapClaims{
		"sub":      email,
		"id":       userID,
		"roles":    []string{role},
		classClaim: class,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, Class: class, ExpiresAt: exp}, nil
}

// Parse verifies signature and registered claims and returns the decoded
// claims. Failures map onto the codec error kinds so callers can tell
// "expired" from "tampered".
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenIllegalArgument
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &rawClaims{}, c.keyFunc,
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }))
	if err != nil {
		return nil, mapParseError(err)
	}
	raw, ok := parsed.Claims.(*rawClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return raw.claims(), nil
}

// ParseUnverifiedExpiry decodes a token while skipping expiry validation.
// Signature and structure are still enforced. Logout uses this so an expired
// session can always be cleared.
func (c *Codec) ParseUnverifiedExpiry(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenIllegalArgument
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &rawClaims{}, c.keyFunc,
		jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, mapParseError(err)
	}
	raw, ok := parsed.Claims.(*rawClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	return raw.claims(), nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrTokenUnsupported
	}
	return c.secret, nil
}

// rawClaims mirrors the wire claim set including the class claim.
type rawClaims struct {
	ID    uint64   `json:"id"`
	Roles []string `json:"roles"`
	Class string   `json:"cls"`
	jwt.RegisteredClaims
}

func (r *rawClaims) claims() *Claims {
	return &Claims{ID: r.ID, Roles: r.Roles, RegisteredClaims: r.RegisteredClaims}
}

// TokenClass extracts the class claim without exposing rawClaims. Tokens
// issued before the class claim existed count as NORMAL.
func (c *Codec) TokenClass(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &rawClaims{}, c.keyFunc,
		jwt.WithoutClaimsValidation())
	if err != nil {
		return "", mapParseError(err)
	}
	raw, ok := parsed.Claims.(*rawClaims)
	if !ok {
		return "", ErrTokenMalformed
	}
	if raw.Class == "" {
		return ClassNormal, nil
	}
	return raw.Class, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenUnsupported
	default:
		return ErrTokenIllegalArgument
	}
}
