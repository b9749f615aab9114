package review

import "errors"

var (
	// ErrUnauthenticated means the caller has to sign in first.
	ErrUnauthenticated = errors.New("please login to submit a review")
	// ErrSubmitInFlight is returned for a submit while another one is running.
	ErrSubmitInFlight = errors.New("review submission already in progress")
	// ErrSubmissionFailed wraps every failed write.
	ErrSubmissionFailed = errors.New("error submitting review")
)

// ValidationError rejects the pending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingRating = &ValidationError{Field: "rating", Message: "please select a rating"}
	ErrInvalidRating = &ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
)
