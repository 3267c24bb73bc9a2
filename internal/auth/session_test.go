package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/utils"
)

// memUserStore and memTokenStore are in-memory store fakes. The tests here
// exercise the session manager alone; the SQL implementations have their own
// tests in the repository package.

type memUserStore struct {
	users map[uint64]model.User
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *memUserStore) FindByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

type memTokenStore struct {
	rows   []model.Token
	nextID uint64
}

func (s *memTokenStore) Insert(_ context.Context, userID uint64, token, class string, expiresAt time.Time) error {
	s.nextID++
	s.rows = append(s.rows, model.Token{
		ID:        s.nextID,
		UserID:    userID,
		Token:     token,
		Class:     class,
		ExpiresAt: expiresAt,
	})
	return nil
}

func (s *memTokenStore) FindByToken(_ context.Context, token string) (model.Token, error) {
	for _, r := range s.rows {
		if r.Token == token {
			return r, nil
		}
	}
	return model.Token{}, sql.ErrNoRows
}

func (s *memTokenStore) FindAllByUser(_ context.Context, userID uint64) ([]model.Token, error) {
	var out []model.Token
	for _, r := range s.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memTokenStore) DeleteAllForUser(_ context.Context, userID uint64) error {
	kept := s.rows[:0]
	for _, r := range s.rows {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	return nil
}

// sessionFixture wires a manager over in-memory stores with a movable clock.
type sessionFixture struct {
	manager *SessionManager
	users   *memUserStore
	tokens  *memTokenStore
	now     time.Time
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	hash, err := utils.HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	owner2 := uint64(2)
	f := &sessionFixture{
		users: &memUserStore{users: map[uint64]model.User{
			1: {ID: 1, Email: "admin@marina.test", PasswordHash: hash, Role: model.RoleAdministrator, IsActive: true},
			2: {ID: 2, Email: "owner@marina.test", PasswordHash: hash, Role: model.RoleCustomerOwner, IsActive: true},
			3: {ID: 3, Email: "tech@marina.test", PasswordHash: hash, Role: model.RoleTechnician, CustomerOwnerID: &owner2, IsActive: true},
			4: {ID: 4, Email: "gone@marina.test", PasswordHash: hash, Role: model.RoleCustomerOwner, IsActive: false},
		}},
		tokens: &memTokenStore{},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	codec := NewCodec("test-secret", testLifetimes)
	f.manager = NewSessionManager(codec, f.users, f.tokens,
		WithClock(func() time.Time { return f.now }))
	return f
}

func TestLoginAndValidate(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	sess, err := f.manager.Login(ctx, "Owner@Marina.Test ", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.User.ID != 2 {
		t.Fatalf("user id = %d, want 2", sess.User.ID)
	}
	if sess.Access.Class != ClassNormal || sess.Refresh.Class != ClassRefresh {
		t.Errorf("classes = %q/%q, want NORMAL/REFRESH", sess.Access.Class, sess.Refresh.Class)
	}
	if len(f.tokens.rows) != 2 {
		t.Errorf("stored %d tokens, want 2", len(f.tokens.rows))
	}

	ident, err := f.manager.Validate(ctx, sess.Access.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ident.UserID != 2 || ident.Email != "owner@marina.test" || ident.Role != model.RoleCustomerOwner {
		t.Errorf("identity = %+v", ident)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown email", "nobody@marina.test", "s3cret", ErrBadCredentials},
		{"wrong password", "owner@marina.test", "nope", ErrBadCredentials},
		{"empty password", "owner@marina.test", "", ErrBadCredentials},
		{"disabled account", "gone@marina.test", "s3cret", ErrAccountDisabled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.manager.Login(ctx, tc.email, tc.password); !errors.Is(err, tc.want) {
				t.Errorf("Login = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateRevokedToken(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	sess, err := f.manager.Login(ctx, "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := f.manager.RevokeAll(ctx, sess.User.ID); err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}

	// The token still verifies cryptographically but has no stored row.
	if _, err := f.manager.Validate(ctx, sess.Access.Token); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Validate = %v, want ErrTokenNotFound", err)
	}
}

func TestValidateStoredExpiryIsAuthoritative(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	sess, err := f.manager.Login(ctx, "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Exactly at the stored expiry the token counts as expired.
	f.now = sess.Access.ExpiresAt
	if _, err := f.manager.Validate(ctx, sess.Access.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate at expiry = %v, want ErrTokenExpired", err)
	}

	// One second before, it is still live.
	f.now = sess.Access.ExpiresAt.Add(-time.Second)
	if _, err := f.manager.Validate(ctx, sess.Access.Token); err != nil {
		t.Errorf("Validate before expiry = %v, want nil", err)
	}

	// When the stored row disagrees with the embedded claim, the row wins.
	for i := range f.tokens.rows {
		if f.tokens.rows[i].Token == sess.Access.Token {
			f.tokens.rows[i].ExpiresAt = f.now.Add(-time.Minute)
		}
	}
	if _, err := f.manager.Validate(ctx, sess.Access.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate with shortened row = %v, want ErrTokenExpired", err)
	}
}

func TestRefresh(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	sess, err := f.manager.Login(ctx, "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	f.now = f.now.Add(time.Minute)
	access, u, err := f.manager.Refresh(ctx, sess.Refresh.Token)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if u.ID != 2 {
		t.Errorf("user id = %d, want 2", u.ID)
	}
	if access.Class != ClassNormal {
		t.Errorf("class = %q, want NORMAL", access.Class)
	}
	if _, err := f.manager.Validate(ctx, access.Token); err != nil {
		t.Errorf("Validate(new access) = %v", err)
	}

	// A NORMAL token must not be accepted in place of a refresh token.
	if _, _, err := f.manager.Refresh(ctx, sess.Access.Token); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Refresh(access token) = %v, want ErrTokenNotFound", err)
	}
}

func TestLogoutRevokesAllDevices(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	first, err := f.manager.Login(ctx, "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	f.now = f.now.Add(time.Second)
	second, err := f.manager.Login(ctx, "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	other, err := f.manager.Login(ctx, "tech@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("tech Login: %v", err)
	}

	if err := f.manager.Logout(ctx, first.Access.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	for _, tok := range []string{first.Access.Token, first.Refresh.Token, second.Access.Token, second.Refresh.Token} {
		if _, err := f.manager.Validate(ctx, tok); !errors.Is(err, ErrTokenNotFound) {
			t.Errorf("Validate after logout = %v, want ErrTokenNotFound", err)
		}
	}
	// Another user's session is untouched.
	if _, err := f.manager.Validate(ctx, other.Access.Token); err != nil {
		t.Errorf("other user's Validate = %v, want nil", err)
	}

	// Logging out again is a no-op.
	if err := f.manager.Logout(ctx, first.Access.Token); err != nil {
		t.Errorf("repeat Logout = %v, want nil", err)
	}
}

func TestLogoutAcceptsExpiredToken(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	sess, err := f.manager.Login(ctx, "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	f.now = f.now.Add(testLifetimes.Refresh + time.Hour)
	if err := f.manager.Logout(ctx, sess.Access.Token); err != nil {
		t.Fatalf("Logout with expired token: %v", err)
	}
	if len(f.tokens.rows) != 0 {
		t.Errorf("stored %d tokens after logout, want 0", len(f.tokens.rows))
	}
}

func TestLogoutRejectsTamperedToken(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	foreign := NewCodec("other-secret", testLifetimes)
	issued, err := foreign.Issue(2, "owner@marina.test", model.RoleCustomerOwner, ClassNormal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := f.manager.Logout(ctx, issued.Token); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("Logout = %v, want ErrTokenInvalidSignature", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	reset, u, err := f.manager.IssueReset(ctx, "owner@marina.test")
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}
	if u.ID != 2 || reset.Class != ClassResetPassword {
		t.Fatalf("user %d class %q", u.ID, reset.Class)
	}

	got, err := f.manager.ValidateReset(ctx, reset.Token)
	if err != nil {
		t.Fatalf("ValidateReset: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("user id = %d, want 2", got.ID)
	}

	// A NORMAL token is not a reset token.
	sess, err := f.manager.Login(ctx, "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := f.manager.ValidateReset(ctx, sess.Access.Token); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("ValidateReset(access) = %v, want ErrTokenNotFound", err)
	}

	if _, _, err := f.manager.IssueReset(ctx, "nobody@marina.test"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("IssueReset(unknown) = %v, want ErrTokenNotFound", err)
	}
}
