package magento2

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	// CreatedAtLayout renders yyyy-MM-ddTHH:mm:ss.SSSZ; callers pass UTC times.
	CreatedAtLayout = "2006-01-02T15:04:05.000Z"

	StatusComplete = "complete"

	commentHeader  = "<b>Response from COVER</b><br> Status: "
	successMessage = "Bestellung wurde erfolgreich verarbeitet."
)

// BuildStatusUpdate turns a COVER response into the comment posted to Magento2.
func BuildStatusUpdate(resp CoverResponse, now time.Time) (StatusUpdate, error) {
	createdAt := now.UTC().Format(CreatedAtLayout)

	order, ok := Document(resp).Doc("order")
	if !ok {
		return StatusUpdate{}, &MissingFieldError{Record: "cover response", Path: "order"}
	}
	coverErr, ok := order.Doc("error")
	if !ok {
		return StatusUpdate{}, &MissingFieldError{Record: "cover response", Path: "order.error"}
	}
	errorCode, ok := coverErr.String("error_code")
	if !ok {
		return StatusUpdate{}, &MissingFieldError{Record: "cover response", Path: "order.error.error_code"}
	}
	errorMessage, _ := coverErr.String("error_msg")

	code, err := strconv.Atoi(errorCode)
	if err != nil {
		return StatusUpdate{}, &MalformedErrorCodeError{Value: errorCode, Err: err}
	}

	return StatusUpdate{
		EntryID:            0,
		CreatedAt:          createdAt,
		Comment:            buildComment(code, errorCode, errorMessage),
		Status:             StatusComplete,
		IsCustomerNotified: 0,
	}, nil
}

// buildComment embeds the code as COVER sent it, including on success.
func buildComment(code int, rawCode, message string) string {
	if code != 0 {
		return commentHeader + rawCode + " Antwort: " + message
	}
	return commentHeader + rawCode + " Antwort: " + successMessage
}

// Marshal encodes the update as compact JSON. HTML is left unescaped since
// the comment is rendered as HTML by the shop backend.
func (u StatusUpdate) Marshal() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(u); err != nil {
		return "", &SerializationError{Err: err}
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// UnmarshalStatusUpdate parses a body produced by Marshal.
func UnmarshalStatusUpdate(raw string) (StatusUpdate, error) {
	var u StatusUpdate
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return StatusUpdate{}, fmt.Errorf("unmarshal status update: %w", err)
	}
	return u, nil
}
