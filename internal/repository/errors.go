// Package repository implements the data access layer over database/sql.
// Sentinel errors defined here let handlers distinguish failure scenarios:
// ErrConflict signals that an operation cannot proceed because of dependent
// records (e.g. deleting a mooring with open work orders), ErrEmailExists
// flags a unique constraint violation on users.email.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when a user insert hits the unique email index.
var ErrEmailExists = errors.New("email already exists")
