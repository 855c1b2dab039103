package errorutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil))

	plain := errors.New("boom")
	wrapped := Wrap(plain)
	assert.False(t, wrapped.Retryable)
	assert.Equal(t, 500, wrapped.Code)
	assert.ErrorIs(t, wrapped, plain)

	classified := Retriable("redis down")
	assert.Same(t, classified, Wrap(fmt.Errorf("outer: %w", classified)))
}

func TestIsRetryable(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	assert.True(t, IsRetryable(RetriableWrap(cause, "load cached input")))
	assert.False(t, IsRetryable(NonRetriableWrap(cause, "resolve order key")))
	assert.False(t, IsRetryable(cause))

	e := RetriableWrap(cause, "load cached input")
	assert.Equal(t, "load cached input: dial tcp: refused", e.Error())
	assert.ErrorIs(t, e, cause)
}
