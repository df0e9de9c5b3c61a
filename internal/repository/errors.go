// Package repository implements persistence for users, files and products on
// top of database/sql.  Sentinel errors defined here let the service layer
// distinguish failure scenarios without inspecting driver error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique index on
// users.email.  The unique index is the arbiter for concurrent signups of the
// same address: exactly one insert wins, every loser observes this error.
var ErrEmailExists = errors.New("email already exists")
