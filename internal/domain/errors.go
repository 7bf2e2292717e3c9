package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found in quiz")
	// ErrAttemptNotFound covers both a missing attempt and one owned by another
	// user; callers cannot tell the two apart.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on signup with an already registered email.
	ErrEmailTaken = errors.New("user already exists with this email")
	// ErrInvalidCredentials is the uniform login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPaymentsNotConfigured is returned when no billing provider is wired.
	ErrPaymentsNotConfigured = errors.New("payment system not configured")
)

// ValidationError marks malformed or missing client input. The message is
// safe to surface verbatim.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Invalid builds a ValidationError with the given message.
func Invalid(msg string) error {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
