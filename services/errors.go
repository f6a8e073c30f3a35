package services

import "errors"

// Shared errors used across services and the HTTP mapping layer. All of
// them represent precondition violations detected locally; none are retried
// internally.
var (
	// Missing entities
	ErrNotFound      = errors.New("requested resource not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")
	ErrMatchNotFound = errors.New("match not found")

	// Authorization
	ErrForbidden = errors.New("operation not allowed for the current user")

	// Validation and business rules
	ErrValidationFailed      = errors.New("validation failed")
	ErrEventNameRequired     = errors.New("event name is required")
	ErrEventInvalidDateRange = errors.New("event end date must not be before start date")
	ErrInvalidRound          = errors.New("match round must be a positive integer")
	ErrInvalidScores         = errors.New("a non-negative score is required for each of the two players")
	ErrPasswordTooShort      = errors.New("password is too short")

	// Roster and scheduling conflicts
	ErrInvalidPlayers      = errors.New("match players must be two distinct users enrolled in the event")
	ErrDuplicateMember     = errors.New("user is already enrolled in this event")
	ErrInsufficientPlayers = errors.New("event needs at least two enrolled players")
	ErrAlreadyScheduled    = errors.New("event already has matches; delete them before generating a new schedule")
	ErrAlreadyCompleted    = errors.New("match result has already been recorded")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
)
