package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/utils"
)

// SessionManager orchestrates login, validation, refresh, logout and the
// password-reset flow over the user and token stores.
type SessionManager struct {
	codec  *Codec
	users  UserStore
	tokens TokenStore
	now    func() time.Time
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithClock overrides the time source, for tests.
func WithClock(fn func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if fn != nil {
			m.now = fn
			m.codec.now = fn
		}
	}
}

// NewSessionManager wires the codec to its stores.
func NewSessionManager(codec *Codec, users UserStore, tokens TokenStore, opts ...SessionOption) *SessionManager {
	m := &SessionManager{codec: codec, users: users, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session is what a successful login returns: the authenticated profile plus
// a normal access token and a refresh token, both persisted in the store.
type Session struct {
	User    model.User
	Access  IssuedToken
	Refresh IssuedToken
}

// Login verifies credentials, issues a NORMAL and a REFRESH token and
// persists both. Unknown email and wrong password are indistinguishable to
// the caller.
func (m *SessionManager) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, ErrBadCredentials
	}
	u, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrBadCredentials
		}
		return Session{}, err
	}
	if !u.IsActive {
		return Session{}, ErrAccountDisabled
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrBadCredentials
	}
	access, err := m.issueAndStore(ctx, u, ClassNormal)
	if err != nil {
		return Session{}, err
	}
	refresh, err := m.issueAndStore(ctx, u, ClassRefresh)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}

// Validate checks a presented token end to end: signature and claims via the
// codec, then presence in the token store (absence means revoked or foreign),
// then the stored expiry. The stored expiry is authoritative even when it
// disagrees with the embedded claim; a stored expiry equal to "now" counts
// as expired.
func (m *SessionManager) Validate(ctx context.Context, tokenString string) (Identity, error) {
	claims, err := m.codec.Parse(tokenString)
	if err != nil {
		return Identity{}, err
	}
	row, err := m.tokens.FindByToken(ctx, tokenString)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrTokenNotFound
		}
		return Identity{}, err
	}
	if !row.ExpiresAt.After(m.now().UTC()) {
		return Identity{}, ErrTokenExpired
	}
	return Identity{UserID: claims.ID, Email: claims.Subject, Role: claims.PrimaryRole()}, nil
}

// Refresh exchanges a valid REFRESH-class token for a fresh NORMAL token.
// The refresh token itself stays valid until it expires or the user logs
// out; revocation remains possible through the stored row.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string) (IssuedToken, model.User, error) {
	ident, err := m.Validate(ctx, refreshToken)
	if err != nil {
		return IssuedToken{}, model.User{}, err
	}
	class, err := m.codec.TokenClass(refreshToken)
	if err != nil {
		return IssuedToken{}, model.User{}, err
	}
	if class != ClassRefresh {
		return IssuedToken{}, model.User{}, ErrTokenNotFound
	}
	u, err := m.users.FindByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IssuedToken{}, model.User{}, ErrTokenNotFound
		}
		return IssuedToken{}, model.User{}, err
	}
	access, err := m.issueAndStore(ctx, u, ClassNormal)
	if err != nil {
		return IssuedToken{}, model.User{}, err
	}
	return access, u, nil
}

// Logout revokes every token the presenting user holds, across all devices.
// The token is decoded without expiry validation so a stale session can
// always be cleared; only signature or structure failures abort. Deleting an
// already-empty token set is a no-op, so concurrent and repeated logouts are
// harmless.
func (m *SessionManager) Logout(ctx context.Context, tokenString string) error {
	claims, err := m.codec.ParseUnverifiedExpiry(tokenString)
	if err != nil {
		return err
	}
	return m.tokens.DeleteAllForUser(ctx, claims.ID)
}

// IssueReset issues a RESET_PASSWORD-class token for the account with the
// given email and persists it. The token is delivered out of band (email);
// an unknown address returns ErrTokenNotFound so the HTTP layer can choose
// not to disclose account existence.
func (m *SessionManager) IssueReset(ctx context.Context, email string) (IssuedToken, model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IssuedToken{}, model.User{}, ErrTokenNotFound
		}
		return IssuedToken{}, model.User{}, err
	}
	reset, err := m.issueAndStore(ctx, u, ClassResetPassword)
	if err != nil {
		return IssuedToken{}, model.User{}, err
	}
	return reset, u, nil
}

// ValidateReset checks that the presented token is a live RESET_PASSWORD
// token and returns the account it belongs to.
func (m *SessionManager) ValidateReset(ctx context.Context, tokenString string) (model.User, error) {
	ident, err := m.Validate(ctx, tokenString)
	if err != nil {
		return model.User{}, err
	}
	class, err := m.codec.TokenClass(tokenString)
	if err != nil {
		return model.User{}, err
	}
	if class != ClassResetPassword {
		return model.User{}, ErrTokenNotFound
	}
	u, err := m.users.FindByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrTokenNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// RevokeAll deletes every token for the user id. Used after a password
// reset and when an account is deleted.
func (m *SessionManager) RevokeAll(ctx context.Context, userID uint64) error {
	return m.tokens.DeleteAllForUser(ctx, userID)
}

func (m *SessionManager) issueAndStore(ctx context.Context, u model.User, class string) (IssuedToken, error) {
	issued, err := m.codec.Issue(u.ID, u.Email, u.Role, class)
	if err != nil {
		return IssuedToken{}, err
	}
	if err := m.tokens.Insert(ctx, u.ID, issued.Token, issued.Class, issued.ExpiresAt); err != nil {
		return IssuedToken{}, err
	}
	return issued, nil
}
