package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")

	ErrForbidden          = errors.New("operation not permitted for this actor")
	ErrConflict           = errors.New("resource is in an incompatible state")
	ErrInvalidTransition  = errors.New("state transition is not allowed")
	ErrPreconditionFailed = errors.New("business precondition not met")
	ErrIncomplete         = errors.New("assessment is not fully answered")

	ErrUnavailable = errors.New("storage unavailable")
)

type ScoreOutOfRangeError struct{ Score int }

func (e *ScoreOutOfRangeError) Error() string {
	return fmt.Sprintf("score %d is out of range [1,5]", e.Score)
}
func (e *ScoreOutOfRangeError) Is(target error) bool { return target == ErrValidation }

// IncompleteError carries the progress pair so the caller can render
// how far the respondent got before the failed completion attempt.
type IncompleteError struct {
	Answered int
	Total    int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("assessment incomplete: %d of %d questions answered", e.Answered, e.Total)
}
func (e *IncompleteError) Is(target error) bool { return target == ErrIncomplete }
