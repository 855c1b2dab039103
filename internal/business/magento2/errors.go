package magento2

import (
	"errors"
	"fmt"
)

// MissingFieldError reports a mandatory field absent from an upstream record.
type MissingFieldError struct {
	Record string
	Path   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.Record, e.Path)
}

// MalformedErrorCodeError reports a COVER error_code that is not an integer.
type MalformedErrorCodeError struct {
	Value string
	Err   error
}

func (e *MalformedErrorCodeError) Error() string {
	return fmt.Sprintf("cover response: malformed error_code %q: %v", e.Value, e.Err)
}

func (e *MalformedErrorCodeError) Unwrap() error { return e.Err }

// SerializationError reports a StatusUpdate that could not be encoded.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize status update: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// TransportError is a failed delivery: a non-2xx answer, or StatusCode 0 when
// no answer arrived at all.
type TransportError struct {
	StatusCode int
	StatusText string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("magento2 transport failure: %v", e.Err)
	}
	return fmt.Sprintf("magento2 http %d %s: %s", e.StatusCode, e.StatusText, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is a response body that is not valid JSON.
type ParseError struct {
	Message string
	Body    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("magento2 response parse failure: %s", e.Message)
}

// IsDataContract reports whether err stems from malformed upstream state
// rather than from delivery.
func IsDataContract(err error) bool {
	var missing *MissingFieldError
	var malformed *MalformedErrorCodeError
	var serialization *SerializationError
	return errors.As(err, &missing) || errors.As(err, &malformed) || errors.As(err, &serialization)
}
