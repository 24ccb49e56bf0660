package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
	"github.com/fittedco/wardrobe-service/internal/repository"
	"github.com/fittedco/wardrobe-service/internal/utils"
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// TokenStore persists refresh tokens. The revoke+insert combinations are
// single methods so the repository can keep them atomic.
type TokenStore interface {
	FindByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllAndStore(ctx context.Context, userID uuid.UUID, tokenHash string, exp time.Time) error
	RotateByHash(ctx context.Context, consumedHash string, userID uuid.UUID, newHash string, exp time.Time) error
}

// AuthConfig carries the token and hashing parameters the service needs.
type AuthConfig struct {
	JWTSecret      string // base64-encoded HMAC secret
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// AuthService implements the credential and token lifecycle: signup, login,
// refresh-token rotation and logout. Collaborators are injected explicitly
// at construction.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	cache  *UserCache
	cfg    AuthConfig
}

func NewAuthService(users UserStore, tokens TokenStore, cache *UserCache, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, tokens: tokens, cache: cache, cfg: cfg}
}

// AuthResult is a freshly issued token pair plus the owning user.
type AuthResult struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	User         model.User
}

// Signup registers a new user and logs them in. Validation order: password
// confirmation, email uniqueness (case-insensitive), password policy. The
// fresh user id is defensively swept of refresh tokens before the first
// pair is issued.
func (s *AuthService) Signup(ctx context.Context, email, firstName, lastName, password, passwordConfirmation string) (AuthResult, error) {
	if password != passwordConfirmation {
		return AuthResult{}, &ValidationError{Message: "Passwords do not match!"}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, &ValidationError{Message: "Email is already registered!"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, internalErr("failed to check email", err)
	}

	if err := utils.ValidatePassword(password); err != nil {
		return AuthResult{}, &ValidationError{Message: err.Error()}
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, internalErr("failed to hash password", err)
	}

	user := model.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, &ValidationError{Message: "Email is already registered!"}
		}
		return AuthResult{}, internalErr("failed to create user", err)
	}
	log.Printf("auth: created user %s", user.ID)

	return s.issuePair(ctx, user)
}

// Login verifies credentials and issues a new pair, revoking every prior
// refresh token so a user has a single active session family. Failures
// never reveal whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, &AuthError{Message: "Invalid login credentials! Please try again."}
		}
		return AuthResult{}, internalErr("failed to load user", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return AuthResult{}, &AuthError{Message: "Invalid login credentials! Please try again."}
	}
	return s.issuePair(ctx, user)
}

// Refresh redeems a raw refresh token. The row is located only by hash;
// single-use rotation revokes the consumed token atomically with issuing
// its replacement.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (AuthResult, error) {
	hash := utils.HashRefreshRaw(rawRefreshToken)
	token, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, &ValidationError{Message: "Invalid refresh token"}
		}
		return AuthResult{}, internalErr("failed to look up refresh token", err)
	}
	if token.Revoked || time.Now().UTC().After(token.ExpiresAt) {
		return AuthResult{}, &ValidationError{Message: "Refresh token is expired or revoked"}
	}

	user, err := s.loadUser(ctx, token.UserID)
	if err != nil {
		return AuthResult{}, err
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, user.ID, user.Email, s.cfg.AccessTTLMin)
	if err != nil {
		return AuthResult{}, internalErr("failed to issue access token", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return AuthResult{}, internalErr("failed to issue refresh token", err)
	}
	if err := s.tokens.RotateByHash(ctx, hash, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return AuthResult{}, internalErr("failed to rotate refresh token", err)
	}
	log.Printf("auth: rotated refresh token for user %s", user.ID)

	return AuthResult{
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: refresh.Raw,
		RefreshExp:   refresh.Exp,
		User:         user,
	}, nil
}

// Logout revokes the session behind the raw refresh token. Unknown tokens
// are silently ignored so the call is idempotent.
func (s *AuthService) Logout(ctx context.Context, rawRefreshToken string) error {
	hash := utils.HashRefreshRaw(rawRefreshToken)
	if _, err := s.tokens.FindByHash(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return internalErr("failed to look up refresh token", err)
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return internalErr("failed to revoke refresh token", err)
	}
	return nil
}

// CurrentUser loads a user by id, serving from the bounded cache when
// possible.
func (s *AuthService) CurrentUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.loadUser(ctx, id)
}

func (s *AuthService) loadUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	if s.cache != nil {
		if u, ok := s.cache.Get(id); ok {
			return u, nil
		}
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, notFoundErrf("User not found")
		}
		return model.User{}, internalErr("failed to load user", err)
	}
	if s.cache != nil {
		s.cache.Put(u)
	}
	return u, nil
}

// issuePair revokes all active refresh tokens for the user and issues a
// fresh access/refresh pair, atomically on the storage side.
func (s *AuthService) issuePair(ctx context.Context, user model.User) (AuthResult, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, user.ID, user.Email, s.cfg.AccessTTLMin)
	if err != nil {
		return AuthResult{}, internalErr("failed to issue access token", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return AuthResult{}, internalErr("failed to issue refresh token", err)
	}
	if err := s.tokens.RevokeAllAndStore(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return AuthResult{}, internalErr("failed to save refresh token", err)
	}

	return AuthResult{
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: refresh.Raw,
		RefreshExp:   refresh.Exp,
		User:         user,
	}, nil
}
