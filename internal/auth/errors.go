// Package auth implements the authentication and authorization core of the
// marina backend: the JWT codec, the session manager over the token store,
// and the tenant scope checks every entity query runs through.
package auth

import (
	"errors"
	"fmt"
)

// Codec failure kinds. Parse maps every verification failure onto exactly
// one of these so callers can special-case "expired" from "tampered".
var (
	ErrTokenMalformed        = errors.New("auth: malformed token")
	ErrTokenInvalidSignature = errors.New("auth: invalid token signature")
	ErrTokenUnsupported      = errors.New("auth: unsupported token")
	ErrTokenIllegalArgument  = errors.New("auth: illegal token argument")
	ErrTokenExpired          = errors.New("auth: token expired")
)

// Session failure kinds.
var (
	// ErrBadCredentials is returned on login when the email is unknown or
	// the password does not match.
	ErrBadCredentials = errors.New("auth: invalid credentials")
	// ErrTokenNotFound is returned when a structurally valid token has no
	// row in the token store, i.e. it was revoked or never issued here.
	ErrTokenNotFound = errors.New("auth: token not found")
	// ErrAccountDisabled is returned when the account exists but is not active.
	ErrAccountDisabled = errors.New("auth: account disabled")
)

// AuthenticationFailed reports whether err is any of the authentication
// failure kinds (codec or session). The HTTP layer maps these uniformly to
// 401; the distinction stays internal.
func AuthenticationFailed(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenInvalidSignature) ||
		errors.Is(err, ErrTokenUnsupported) ||
		errors.Is(err, ErrTokenIllegalArgument) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrBadCredentials) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrAccountDisabled)
}

// NotAuthorizedError rejects a caller whose role does not permit the
// requested operation at all, regardless of scope.
type NotAuthorizedError struct {
	Role string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("role %s is not authorized for this operation", e.Role)
}

// ScopeRequiredError rejects an administrator call that omitted the
// mandatory customer owner selection.
type ScopeRequiredError struct{}

func (e *ScopeRequiredError) Error() string {
	return "a customer owner must be selected"
}

// ScopeMismatchError rejects an attempt to act on a different customer
// owner's data.
type ScopeMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *ScopeMismatchError) Error() string {
	return fmt.Sprintf("cannot operate on a different customer owner's data (expected %d, got %d)",
		e.Expected, e.Actual)
}

// NotCustomerOwnerError rejects a scope selection that names a user whose
// role is not CUSTOMER_OWNER.
type NotCustomerOwnerError struct {
	UserID uint64
	Role   string
}

func (e *NotCustomerOwnerError) Error() string {
	return fmt.Sprintf("user %d is not a customer owner (role %s)", e.UserID, e.Role)
}

// ResourceNotFoundError rejects a reference to a user or owner id that does
// not exist in the store.
type ResourceNotFoundError struct {
	Kind string
	ID   uint64
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("no such %s: %d", e.Kind, e.ID)
}
