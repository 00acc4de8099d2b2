// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish failure scenarios: ErrNotFound
// marks an id that matches no row, the conflict values a write
// refused by a uniqueness or state constraint.  Handlers translate
// each into the corresponding HTTP status.
package repository

import "errors"

// ErrNotFound is returned when a lookup by id matches no row.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrIdentityExists is returned when registering with an email or
// phone that is already taken.
var ErrIdentityExists = errors.New("email or phone number already registered")

// ErrAlreadyParticipant is returned when joining a recitation the
// user is already a member of.
var ErrAlreadyParticipant = errors.New("already a participant")

// ErrPortionTaken is returned when the conditional claim on a portion
// matched no row: the portion either does not exist or already has an
// assignee.
var ErrPortionTaken = errors.New("portion already assigned")

// ErrNotAssignee is returned when completing or reporting progress on
// a portion the caller does not currently hold.
var ErrNotAssignee = errors.New("portion not found or not assigned to you")

// ErrNameExists is returned when creating a content type whose name
// is already in the catalog.
var ErrNameExists = errors.New("content type with this name already exists")
