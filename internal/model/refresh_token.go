package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and carries metadata for expiry and revocation.
// The raw token is never stored; only the base64 form of its SHA-256 hash.
//
// A token is usable only while Revoked is false and the expiry lies in the
// future. Revocation is terminal: rows are never un-revoked and never
// physically deleted.
type RefreshToken struct {
	ID        uuid.UUID // refresh_tokens.id
	UserID    uuid.UUID // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	Revoked   bool      // refresh_tokens.revoked
	CreatedAt time.Time // refresh_tokens.created_at
}
