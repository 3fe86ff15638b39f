package services

import (
	"errors"

	"aitools/internal/catalog"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadySubscribed = errors.New("email already subscribed")
	ErrDuplicateSlug     = errors.New("slug already in use")
	ErrInvalidTransition = errors.New("submission already reviewed")
	ErrInvalidCaptcha    = errors.New("wrong captcha answer")
	ErrInvalidLogin      = errors.New("invalid email or password")
	ErrEmailTaken        = errors.New("email already registered")
)

// ValidationError is a problem with user input, caught before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage turns an error into text fit for a toast or form message.
func UserMessage(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, catalog.ErrSignInRequired):
		return "Please sign in to continue"
	case errors.Is(err, ErrAlreadySubscribed):
		return "This email is already subscribed!"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrDuplicateSlug):
		return "A post with this slug already exists"
	case errors.Is(err, ErrInvalidTransition):
		return "This submission has already been reviewed"
	case errors.Is(err, ErrInvalidCaptcha):
		return "Wrong answer to the verification question"
	case errors.Is(err, ErrInvalidLogin):
		return "Invalid email or password"
	case errors.Is(err, ErrEmailTaken):
		return "An account with this email already exists"
	default:
		return "Something went wrong. Please try again."
	}
}
