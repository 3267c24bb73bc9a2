package auth

import (
	"context"
	"time"

	"github.com/iliyamo/marina-mooring-management/internal/model"
)

// UserStore is the identity lookup surface the session manager and scope
// checks depend on. Implemented by repository.UserRepo; implementations
// return sql.ErrNoRows (or an equivalent not-found error) for missing rows.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists issued tokens. Deleting rows is the sole revocation
// mechanism; implementations must make DeleteAllForUser atomic per user.
type TokenStore interface {
	Insert(ctx context.Context, userID uint64, token, class string, expiresAt time.Time) error
	FindByToken(ctx context.Context, token string) (model.Token, error)
	FindAllByUser(ctx context.Context, userID uint64) ([]model.Token, error)
	DeleteAllForUser(ctx context.Context, userID uint64) error
}
