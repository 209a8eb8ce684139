package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when an insert would violate the unique
	// email constraint on profiles
	ErrDuplicateEmail = errors.New("profile with this email already exists")

	// ErrDuplicateProfile is returned when a profile row already exists under
	// the given id
	ErrDuplicateProfile = errors.New("profile with this id already exists")

	// ErrDuplicateBid is returned when a professional already has a bid on
	// the job
	ErrDuplicateBid = errors.New("bid for this job already exists")
)
