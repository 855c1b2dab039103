package errorutil

import (
	"errors"
	"fmt"
)

// Error is the job-level error carried in responses and callbacks. Retryable
// decides whether the job goes back to the queue or gets buried.
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retriable marks a transient failure (cache unreachable, queue hiccup).
func Retriable(message string) *Error {
	return &Error{
		Code:      500,
		Message:   message,
		Retryable: true,
	}
}

// RetriableWrap is Retriable keeping err as cause.
func RetriableWrap(err error, message string) *Error {
	e := Retriable(fmt.Sprintf("%s: %v", message, err))
	e.DevDetails = fmt.Sprintf("%+v", err)
	e.cause = err
	return e
}

// NonRetriable marks a failure that redelivery cannot fix (malformed upstream data).
func NonRetriable(message string) *Error {
	return &Error{
		Code:      400,
		Message:   message,
		Retryable: false,
	}
}

// NonRetriableWrap is NonRetriable keeping err as cause.
func NonRetriableWrap(err error, message string) *Error {
	e := NonRetriable(fmt.Sprintf("%s: %v", message, err))
	e.DevDetails = fmt.Sprintf("%+v", err)
	e.cause = err
	return e
}

// Wrap converts err into an *Error. Errors that are not already classified
// are treated as non-retriable.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code:       500,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// IsRetryable reports whether err was classified as retriable.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
