package utils

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Secure123", ""},
		{"exactly min length", "12345678", ""},
		{"exactly max length", strings.Repeat("a", 128), ""},
		{"too short", "short", "at least 8 characters"},
		{"empty", "", "at least 8 characters"},
		{"too long", strings.Repeat("a", 129), "no longer than 128 characters"},
		{"contains space", "pass word123", "whitespace"},
		{"contains tab", "password\t123", "whitespace"},
		{"contains newline", "password\n123", "whitespace"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidatePassword(%q) = %v, want nil", tc.password, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidatePassword(%q) = nil, want error containing %q", tc.password, tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("ValidatePassword(%q) = %q, want it to contain %q", tc.password, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidatePasswordShortBeatsWhitespace(t *testing.T) {
	// "a b" violates both rules; length is checked first.
	err := ValidatePassword("a b")
	if err == nil || !strings.Contains(err.Error(), "at least 8") {
		t.Fatalf("got %v, want length violation", err)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secure123", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Secure123" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "Secure123") {
		t.Fatal("VerifyPassword rejected the correct password")
	}
	if VerifyPassword(hash, "Wrong1234") {
		t.Fatal("VerifyPassword accepted a wrong password")
	}
}
