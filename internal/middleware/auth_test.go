package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/utils"
)

type stubUserStore struct{ user model.User }

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	if email == s.user.Email {
		return s.user, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (s *stubUserStore) FindByID(_ context.Context, id uint64) (model.User, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return model.User{}, sql.ErrNoRows
}

type stubTokenStore struct{ rows map[string]model.Token }

func (s *stubTokenStore) Insert(_ context.Context, userID uint64, token, class string, expiresAt time.Time) error {
	s.rows[token] = model.Token{UserID: userID, Token: token, Class: class, ExpiresAt: expiresAt}
	return nil
}

func (s *stubTokenStore) FindByToken(_ context.Context, token string) (model.Token, error) {
	row, ok := s.rows[token]
	if !ok {
		return model.Token{}, sql.ErrNoRows
	}
	return row, nil
}

func (s *stubTokenStore) FindAllByUser(_ context.Context, _ uint64) ([]model.Token, error) {
	return nil, nil
}

func (s *stubTokenStore) DeleteAllForUser(_ context.Context, userID uint64) error {
	for k, v := range s.rows {
		if v.UserID == userID {
			delete(s.rows, k)
		}
	}
	return nil
}

func newTestSessions(t *testing.T) (*auth.SessionManager, string) {
	t.Helper()
	hash, err := utils.HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &stubUserStore{user: model.User{
		ID: 2, Email: "owner@marina.test", PasswordHash: hash,
		Role: model.RoleCustomerOwner, IsActive: true,
	}}
	codec := auth.NewCodec("test-secret", auth.Lifetimes{
		Normal: 15 * time.Minute, Refresh: time.Hour, ResetPassword: time.Hour,
	})
	sessions := auth.NewSessionManager(codec, users, &stubTokenStore{rows: map[string]model.Token{}})
	sess, err := sessions.Login(context.Background(), "owner@marina.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return sessions, sess.Access.Token
}

func identityEcho(sessions *auth.SessionManager) *echo.Echo {
	e := echo.New()
	e.Use(Authenticate(sessions))
	g := e.Group("/v1")
	g.Use(RequireRole(model.RoleCustomerOwner))
	g.GET("/whoami", func(c echo.Context) error {
		ident, _ := auth.IdentityFromContext(c)
		return c.JSON(http.StatusOK, echo.Map{"email": ident.Email})
	})
	return e
}

func TestAuthenticateValidToken(t *testing.T) {
	sessions, token := newTestSessions(t)
	e := identityEcho(sessions)

	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAuthenticateRejections(t *testing.T) {
	sessions, token := newTestSessions(t)
	e := identityEcho(sessions)

	if err := sessions.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"revoked token", "Bearer " + token, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireRoleForbidsWrongRole(t *testing.T) {
	sessions, token := newTestSessions(t)

	e := echo.New()
	e.Use(Authenticate(sessions))
	g := e.Group("/v1")
	g.Use(RequireRole(model.RoleAdministrator))
	g.GET("/admin-only", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/v1/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
