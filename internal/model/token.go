package model

import "time"

// Token models an entry in the `tokens` table. Class holds one of the auth
// token class names (NORMAL, REFRESH, RESET_PASSWORD). The signed JWT string
// is stored verbatim; a token is valid only while its row still exists and
// the stored expiry lies in the future. Revocation deletes the row outright,
// there is no revoked flag.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Token     – the serialized signed JWT.
//  Class     – token class name.
//  ExpiresAt – stored expiration timestamp (authoritative for validation).
//  CreatedAt – timestamp of creation.
type Token struct {
	ID        uint64    // tokens.id
	UserID    uint64    // tokens.user_id
	Token     string    // tokens.token
	Class     string    // tokens.class
	ExpiresAt time.Time // tokens.expires_at
	CreatedAt time.Time // tokens.created_at
}
