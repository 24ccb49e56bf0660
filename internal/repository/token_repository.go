package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
)

// TokenRepo persists refresh tokens (hash only, never the raw value).
// Revoke+issue pairs run inside a single transaction so a session rotation
// can never apply partially.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// FindByHash returns the token row matching the hash, revoked or not.
// Callers decide whether an expired or revoked row is acceptable.
func (r *TokenRepo) FindByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		t      model.RefreshToken
		id     string
		userID string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, revoked, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&id, &userID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if t.ID, err = uuid.Parse(id); err != nil {
		return model.RefreshToken{}, err
	}
	if t.UserID, err = uuid.Parse(userID); err != nil {
		return model.RefreshToken{}, err
	}
	return t, nil
}

// RevokeByHash marks a single token as revoked. Revocation is terminal and
// idempotent; revoking an already-revoked or absent token is not an error.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE token_hash=? AND revoked=FALSE",
		tokenHash)
	return err
}

// RevokeAllAndStore revokes every active token of the user and inserts a
// fresh one, atomically. Used on login and signup so a user ever has a
// single active session family.
func (r *TokenRepo) RevokeAllAndStore(ctx context.Context, userID uuid.UUID, tokenHash string, exp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE user_id=? AND revoked=FALSE",
		userID.String()); err != nil {
		return err
	}
	if err := insertToken(ctx, tx, userID, tokenHash, exp); err != nil {
		return err
	}
	return tx.Commit()
}

// RotateByHash revokes the consumed token and inserts its replacement for
// the same user, atomically. Each refresh token can be redeemed once.
func (r *TokenRepo) RotateByHash(ctx context.Context, consumedHash string, userID uuid.UUID, newHash string, exp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE token_hash=? AND revoked=FALSE",
		consumedHash); err != nil {
		return err
	}
	if err := insertToken(ctx, tx, userID, newHash, exp); err != nil {
		return err
	}
	return tx.Commit()
}

func insertToken(ctx context.Context, tx *sql.Tx, userID uuid.UUID, tokenHash string, exp time.Time) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at) VALUES (?,?,?,?,FALSE,?)",
		uuid.NewString(), userID.String(), tokenHash, exp, time.Now().UTC())
	return err
}
