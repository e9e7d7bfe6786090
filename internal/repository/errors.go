// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings. For example, ErrNotFound
// maps to an HTTP 404 response while ErrDuplicate signals a
// uniqueness violation that maps to a 400.
package repository

import "errors"

// ErrNotFound is returned when the requested record does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an account with an
// email address that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint other than the account email, such as an organization
// name or registration number collision.
var ErrDuplicate = errors.New("duplicate record")

// ErrAlreadyReviewed is returned when a reviewer attempts to review
// the same NGO profile a second time.
var ErrAlreadyReviewed = errors.New("already reviewed")
