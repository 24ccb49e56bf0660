// Package repository persists wardrobe entities in MySQL. Sentinel errors
// defined here let the service layer distinguish failure scenarios without
// inspecting driver error strings. Cross-user lookups resolve as
// ErrNotFound by construction: every query is scoped by user_id, so a row
// owned by someone else simply does not exist from the caller's point of
// view.
package repository

import "errors"

// ErrNotFound is returned when a scoped lookup matches no row. Handlers
// translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user with an email that is
// already registered (case-insensitive).
var ErrEmailExists = errors.New("email already exists")
