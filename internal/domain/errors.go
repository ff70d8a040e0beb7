package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable wraps network or service failures of a backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidState is returned when an operation is not valid in the session's current state.
	ErrInvalidState = errors.New("operation not valid in current session state")
	// ErrAnswerAlreadySelected is returned when a question is answered twice. It matches ErrInvalidState.
	ErrAnswerAlreadySelected = fmt.Errorf("answer already selected for this question: %w", ErrInvalidState)
	// ErrInvalidLabel indicates an answer label outside a-d.
	ErrInvalidLabel = errors.New("invalid answer label")
	// ErrUnknownCategory indicates a category tag outside the fixed set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownScoreField indicates a leaderboard ranking field that does not exist.
	ErrUnknownScoreField = errors.New("unknown score field")
	// ErrNoQuestions is returned when the question store has nothing for a category.
	ErrNoQuestions = errors.New("no questions for category")
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountNotFound is returned when no credentials exist for an email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrSessionNotFound is returned when a user has no quiz session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidImage indicates an uploaded profile photo is not an image.
	ErrInvalidImage = errors.New("uploaded file is not an image")
)

// ValidationError reports malformed user input (form fields, dates).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unavailable wraps err so callers can match it with ErrStoreUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
