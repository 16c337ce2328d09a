package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrCheckInNotFound = errors.New("check-in doesn't exist")
	ErrTaskNotFound    = errors.New("task doesn't exist")
	ErrWrongOwner      = errors.New("resource belongs to another user")

	ErrAlreadyGenerated = errors.New("tasks already generated today")
	ErrLockNotAcquired  = errors.New("lock is held by another worker")
)

// ValidationError is returned when input breaks a business rule.
// Nothing is written when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// Check-in sequencing violations
var (
	ErrAlreadyStarted  = NewValidationError("study session already started today")
	ErrStartRequired   = NewValidationError("start check-in required first")
	ErrAlreadyEnded    = NewValidationError("study session already ended today")
	ErrInvalidCheckIn  = NewValidationError("invalid check-in type")
	ErrEmptyContent    = NewValidationError("check-in content is required")
	ErrTaskTypeChanged = NewValidationError("task type can't be changed")
)

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
