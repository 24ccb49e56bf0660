package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fittedco/wardrobe-service/internal/model"
	"github.com/fittedco/wardrobe-service/internal/repository"
	"github.com/fittedco/wardrobe-service/internal/utils"
)

// ----- fakes -----

type fakeUserStore struct {
	byEmail map[string]model.User
	byID    map[uuid.UUID]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: map[string]model.User{},
		byID:    map[uuid.UUID]model.User{},
	}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.byEmail[u.Email] = *u
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeTokenStore struct {
	rows map[string]model.RefreshToken // keyed by hash
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: map[string]model.RefreshToken{}}
}

func (f *fakeTokenStore) FindByHash(_ context.Context, hash string) (model.RefreshToken, error) {
	row, ok := f.rows[hash]
	if !ok {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return row, nil
}

func (f *fakeTokenStore) RevokeByHash(_ context.Context, hash string) error {
	if row, ok := f.rows[hash]; ok {
		row.Revoked = true
		f.rows[hash] = row
	}
	return nil
}

func (f *fakeTokenStore) RevokeAllAndStore(_ context.Context, userID uuid.UUID, hash string, exp time.Time) error {
	for h, row := range f.rows {
		if row.UserID == userID {
			row.Revoked = true
			f.rows[h] = row
		}
	}
	f.rows[hash] = model.RefreshToken{
		ID: uuid.New(), UserID: userID, TokenHash: hash, ExpiresAt: exp,
	}
	return nil
}

func (f *fakeTokenStore) RotateByHash(_ context.Context, consumedHash string, userID uuid.UUID, newHash string, exp time.Time) error {
	if row, ok := f.rows[consumedHash]; ok {
		row.Revoked = true
		f.rows[consumedHash] = row
	}
	f.rows[newHash] = model.RefreshToken{
		ID: uuid.New(), UserID: userID, TokenHash: newHash, ExpiresAt: exp,
	}
	return nil
}

func (f *fakeTokenStore) activeCount(userID uuid.UUID) int {
	n := 0
	for _, row := range f.rows {
		if row.UserID == userID && !row.Revoked {
			n++
		}
	}
	return n
}

func newTestAuthService() (*AuthService, *fakeUserStore, *fakeTokenStore) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	cfg := AuthConfig{
		JWTSecret:      base64.StdEncoding.EncodeToString([]byte("test-signing-secret")),
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
	}
	return NewAuthService(users, tokens, NewUserCache(8), cfg), users, tokens
}

// ----- tests -----

func TestSignupThenLogin(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Signup(ctx, "a@b.com", "Ada", "Lovelace", "Secure123", "Secure123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("signup returned empty tokens")
	}
	if res.User.Email != "a@b.com" {
		t.Fatalf("user email = %q", res.User.Email)
	}

	login, err := svc.Login(ctx, "a@b.com", "Secure123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatal("login returned a different user")
	}
	// Login revokes the signup session; only the newest token stays active.
	if n := tokens.activeCount(res.User.ID); n != 1 {
		t.Fatalf("active tokens = %d, want 1", n)
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	svc, users, _ := newTestAuthService()
	_, err := svc.Signup(context.Background(), "a@b.com", "", "", "Secure123", "Different123")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Message != "Passwords do not match!" {
		t.Fatalf("message = %q", ve.Message)
	}
	if len(users.byEmail) != 0 {
		t.Fatal("user persisted despite mismatch")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := svc.Signup(ctx, "a@b.com", "", "", "Secure123", "Secure123"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(ctx, "a@b.com", "", "", "Secure123", "Secure123")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "Email is already registered!" {
		t.Fatalf("err = %v, want duplicate-email validation error", err)
	}
}

func TestSignupWeakPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, err := svc.Signup(context.Background(), "a@b.com", "", "", "short", "short")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if !strings.Contains(ve.Message, "at least 8") {
		t.Fatalf("message = %q, want the violated rule named", ve.Message)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := svc.Signup(ctx, "a@b.com", "", "", "Secure123", "Secure123"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, errWrongPass := svc.Login(ctx, "a@b.com", "Wrong1234")
	_, errNoUser := svc.Login(ctx, "nobody@b.com", "Secure123")

	var ae *AuthError
	if !errors.As(errWrongPass, &ae) {
		t.Fatalf("wrong password err = %v, want AuthError", errWrongPass)
	}
	wrongPassMsg := ae.Message
	if !errors.As(errNoUser, &ae) {
		t.Fatalf("unknown user err = %v, want AuthError", errNoUser)
	}
	if ae.Message != wrongPassMsg {
		t.Fatalf("messages differ (%q vs %q); they must not reveal which part failed", wrongPassMsg, ae.Message)
	}
}

func TestRefreshRotatesAndIsSingleUse(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	signup, err := svc.Signup(ctx, "a@b.com", "", "", "Secure123", "Secure123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	first, err := svc.Refresh(ctx, signup.RefreshToken)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if first.RefreshToken == signup.RefreshToken {
		t.Fatal("refresh did not rotate the token")
	}

	if _, err := svc.Refresh(ctx, signup.RefreshToken); err == nil {
		t.Fatal("consumed refresh token redeemed twice")
	}

	if _, err := svc.Refresh(ctx, first.RefreshToken); err != nil {
		t.Fatalf("rotated token should still work: %v", err)
	}
}

func TestRefreshRejectsUnknownAndExpired(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, "never-issued"); err == nil {
		t.Fatal("unknown token refreshed")
	}

	signup, err := svc.Signup(ctx, "a@b.com", "", "", "Secure123", "Secure123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	hash := utils.HashRefreshRaw(signup.RefreshToken)
	row := tokens.rows[hash]
	row.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	tokens.rows[hash] = row

	_, err = svc.Refresh(ctx, signup.RefreshToken)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError for expired token", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()
	signup, err := svc.Signup(ctx, "a@b.com", "", "", "Secure123", "Secure123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.Logout(ctx, signup.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if n := tokens.activeCount(signup.User.ID); n != 0 {
		t.Fatalf("active tokens after logout = %d", n)
	}
	// Logging out again, or with a token that never existed, must not fail.
	if err := svc.Logout(ctx, signup.RefreshToken); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(ctx, "never-issued"); err != nil {
		t.Fatalf("logout of unknown token: %v", err)
	}
}

func TestCurrentUserUsesCache(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()
	signup, err := svc.Signup(ctx, "a@b.com", "Ada", "Lovelace", "Secure123", "Secure123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	u, err := svc.CurrentUser(ctx, signup.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if u.Email != "a@b.com" {
		t.Fatalf("email = %q", u.Email)
	}

	// Remove the row behind the cache; a second read must still succeed.
	delete(users.byID, signup.User.ID)
	if _, err := svc.CurrentUser(ctx, signup.User.ID); err != nil {
		t.Fatalf("cached CurrentUser: %v", err)
	}

	_, err = svc.CurrentUser(ctx, uuid.New())
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}
