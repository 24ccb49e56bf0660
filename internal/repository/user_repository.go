package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
)

// UserRepo persists rows of the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new user. Emails are stored lower-cased so uniqueness is
// case-insensitive at the schema level as well.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, first_name, last_name, password_hash, email_verified, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		u.ID.String(), u.Email, u.FirstName, u.LastName, u.PasswordHash, u.EmailVerified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		// MySQL 1062 = duplicate entry on the unique email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,first_name,last_name,password_hash,email_verified,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,first_name,last_name,password_hash,email_verified,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id.String()))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u  model.User
		id string
	)
	err := row.Scan(&id, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}
