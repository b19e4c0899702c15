package domain

import "errors"

var (
	// ErrNotFound is matched by every "record absent" error.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = notFound("user not found")
	// ErrQuestionNotFound is returned when the referenced question does not exist.
	ErrQuestionNotFound = notFound("question not found")
	// ErrAlreadyAttempted is returned when a user tries to take the quiz a second time.
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrQuizInactive is returned when the settings gate is closed.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrNoQuestions is returned when the question pool is empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidState is returned when a user submits without an assignment.
	ErrInvalidState = errors.New("quiz was not started")
	// ErrNotAttempted is returned when a result is requested before submission.
	ErrNotAttempted = errors.New("quiz not attempted yet")
	// ErrTimeExpired is returned when a submission arrives after the quiz window closed.
	ErrTimeExpired = errors.New("quiz time has expired")
	// ErrAssignmentChanged is returned when the assignment was restarted while a submission was being graded.
	ErrAssignmentChanged = errors.New("assignment changed during submission")
	// ErrSubmissionInProgress is returned when another submit for the same user holds the attempt lock.
	ErrSubmissionInProgress = errors.New("submission already in progress")
	// ErrUserExists is returned by stores when registerNo or email is already taken.
	ErrUserExists = errors.New("user already registered")
	// ErrUnauthorized is returned when the admin key is missing or wrong.
	ErrUnauthorized = errors.New("invalid admin key")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

type notFoundError struct{ msg string }

func notFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError describes malformed input, e.g. a question with the wrong number of correct options.
type ValidationError struct {
	Msg string
}

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
