package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/config"
	"github.com/iliyamo/marina-mooring-management/internal/queue"
	"github.com/iliyamo/marina-mooring-management/internal/repository"
	queuepublisher "github.com/iliyamo/marina-mooring-management/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Sessions *auth.SessionManager
	Users    *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, sessions *auth.SessionManager, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Sessions: sessions, Users: users}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID              uint64  `json:"id"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	CustomerOwnerID *uint64 `json:"customer_owner_id,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sess, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		if auth.AuthenticationFailed(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User: userPart{
			ID: sess.User.ID, Email: sess.User.Email,
			Role: sess.User.Role, CustomerOwnerID: sess.User.CustomerOwnerID,
		},
		Access:  tokenPart{Token: sess.Access.Token, Expires: sess.Access.ExpiresAt},
		Refresh: tokenPart{Token: sess.Refresh.Token, Expires: sess.Refresh.ExpiresAt},
	})
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token is not rotated; it stays valid until expiry or logout.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	access, u, err := h.Sessions.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if auth.AuthenticationFailed(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":   userPart{ID: u.ID, Email: u.Email, Role: u.Role, CustomerOwnerID: u.CustomerOwnerID},
		"access": tokenPart{Token: access.Token, Expires: access.ExpiresAt},
	})
}

// ForgotPassword issues a reset token and publishes the email event. The
// response never discloses whether the address exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reset, u, err := h.Sessions.IssueReset(ctx, req.Email)
	if err == nil {
		// Delivery failures are logged by the publisher; the client response
		// is identical either way.
		_ = queuepublisher.PublishPasswordReset(ctx, queue.PasswordResetEvent{
			UserID:    u.ID,
			Email:     u.Email,
			Token:     reset.Token,
			ExpiresAt: reset.ExpiresAt.Format(time.RFC3339),
		})
	} else if !auth.AuthenticationFailed(err) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset request failed"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted"})
}

// ResetPassword consumes a RESET_PASSWORD token, sets the new password and
// revokes every outstanding session of the account.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	token := strings.TrimSpace(req.Token)
	if token == "" || len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and a password of at least 8 characters are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Sessions.ValidateReset(ctx, token)
	if err != nil {
		if auth.AuthenticationFailed(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid reset token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Sessions.RevokeAll(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Logout revokes every token of the presenting user, across all devices.
// An expired access token is accepted so stale sessions can always be
// cleared; only a token that cannot be decoded at all is rejected.
func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header"})
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.Logout(ctx, raw); err != nil {
		if auth.AuthenticationFailed(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": ident.UserID,
		"email":   ident.Email,
		"role":    ident.Role,
	})
}
