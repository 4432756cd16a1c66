package domain

import "errors"

var (
	// ErrIncompleteForm is returned when a registration is missing username, email or password.
	ErrIncompleteForm = errors.New("username, email and password are required")
	// ErrDuplicateUser is returned when a username is already registered.
	ErrDuplicateUser = errors.New("username already registered")
	// ErrUserNotFound indicates the username has never been registered.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when a login password does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidMode indicates a quiz was requested for an unknown mode.
	ErrInvalidMode = errors.New("unknown quiz mode")
	// ErrSessionNotFound is returned when a quiz run is not (or no longer) active.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrBankUnavailable wraps failures to load the question catalog.
	ErrBankUnavailable = errors.New("question bank unavailable")
	// ErrSessionComplete is returned when answering a run that already finished.
	ErrSessionComplete = errors.New("quiz session already complete")
)
