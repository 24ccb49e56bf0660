package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"     // secure random source for refresh tokens
	"crypto/sha256"   // SHA-256 hashing for refresh tokens
	"encoding/base64" // base64 codecs for secrets, hashes and raw tokens
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are stateless: validity is determined purely by signature
// and expiry, never by a storage lookup.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived opaque token used to obtain new
// access tokens. Raw is what the client receives; only the SHA-256 hash of
// Raw is ever persisted, so a database compromise cannot yield usable
// tokens.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// Identity is what a verified access token asserts about its bearer.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

var errInvalidToken = errors.New("invalid access token")

// signingKey decodes the base64-encoded server secret into key bytes.
func signingKey(secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(secret)
}

// NewAccessToken builds and signs an HS256 JWT for a user. The token
// carries subject=userID, the email claim, a type=access marker, issued-at
// and an expiry of now + ttlMin minutes.
func NewAccessToken(secret string, userID uuid.UUID, email string, ttlMin int) (AccessToken, error) {
	key, err := signingKey(secret)
	if err != nil {
		return AccessToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"type":  "access",
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(key)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and extracts the bearer
// identity. Malformed, unsigned or expired tokens come back as an error;
// callers classify that as "not authenticated", never as a server fault.
func ParseAccessToken(secret, raw string) (Identity, error) {
	key, err := signingKey(secret)
	if err != nil {
		return Identity{}, err
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return key, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return Identity{}, errInvalidToken
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, errInvalidToken
	}
	email, _ := claims["email"].(string)
	return Identity{UserID: id, Email: email}, nil
}

// ValidateAccessToken reports whether raw is a well-formed, signed,
// unexpired access token.
func ValidateAccessToken(secret, raw string) bool {
	_, err := ParseAccessToken(secret, raw)
	return err == nil
}

// NewRefreshToken returns a cryptographically random opaque token and its
// expiration. Refresh tokens carry no claims; expiry is enforced at lookup
// time against the stored row, not by a signature.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: base64.RawURLEncoding.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the base64-encoded SHA-256 hash of a raw refresh
// token. Rows in refresh_tokens are located only by this value.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}
