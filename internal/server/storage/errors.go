package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username or email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrRecordNotFound indicates that analysis record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrPreferencesNotFound indicates that user has no saved preferences
	ErrPreferencesNotFound = errors.New("preferences not found")
)
