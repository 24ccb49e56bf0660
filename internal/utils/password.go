package utils

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	passwordMinLen = 8
	passwordMaxLen = 128
)

// ValidatePassword enforces the signup password policy: minimum length 8,
// maximum length 128, no whitespace characters. Rules are evaluated in that
// order and the first violation wins; the returned error names the rule.
func ValidatePassword(plain string) error {
	if len(plain) < passwordMinLen {
		return fmt.Errorf("password validation failed: password must be at least %d characters long", passwordMinLen)
	}
	if len(plain) > passwordMaxLen {
		return fmt.Errorf("password validation failed: password must be no longer than %d characters", passwordMaxLen)
	}
	for _, r := range plain {
		if unicode.IsSpace(r) {
			return errors.New("password validation failed: password must not contain whitespace characters")
		}
	}
	return nil
}

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
