package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application user record as stored in the `users`
// table. The json tags are omitted because these structs are used by the
// repository layer only; handlers define separate response types with the
// JSON naming the clients expect.
//
// Fields:
//
//	ID            - primary key identifier of the user.
//	Email         - unique email address (stored lower-cased).
//	FirstName     - given name supplied at signup.
//	LastName      - family name supplied at signup.
//	PasswordHash  - bcrypt hashed password.
//	EmailVerified - whether the address has been confirmed.
//	CreatedAt     - timestamp of creation.
//	UpdatedAt     - timestamp of last update.
type User struct {
	ID            uuid.UUID // users.id
	Email         string    // users.email
	FirstName     string    // users.first_name
	LastName      string    // users.last_name
	PasswordHash  string    // users.password_hash
	EmailVerified bool      // users.email_verified
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}
