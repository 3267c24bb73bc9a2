package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/marina-mooring-management/internal/model"
)

// TokenRepo persists issued tokens (`tokens` table). Revocation deletes
// rows; there is no revoked flag, so a token is live exactly while its row
// exists and the stored expiry is in the future.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Insert stores a freshly issued token row.
func (r *TokenRepo) Insert(ctx context.Context, userID uint64, token, class string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO tokens (user_id, token, class, expires_at) VALUES (?,?,?,?)",
		userID, token, class, expiresAt)
	return err
}

// FindByToken returns the row for the exact token string, or sql.ErrNoRows
// when the token was revoked or never issued by this system.
func (r *TokenRepo) FindByToken(ctx context.Context, token string) (model.Token, error) {
	var t model.Token
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,token,class,expires_at,created_at FROM tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.Class, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

// FindAllByUser returns every token row a user currently holds.
func (r *TokenRepo) FindAllByUser(ctx context.Context, userID uint64) ([]model.Token, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,token,class,expires_at,created_at FROM tokens WHERE user_id=? ORDER BY id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.Token
	for rows.Next() {
		var t model.Token
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Class, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// DeleteAllForUser removes every token row the user holds. A single DELETE
// statement, so the all-device revocation is atomic per user; deleting an
// empty set is a no-op.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM tokens WHERE user_id=?", userID)
	return err
}
