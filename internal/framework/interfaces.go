package framework

import (
	"context"
	"time"
)

// MessageSource abstracts the queue the subscriber pulls from.
type MessageSource interface {
	// Consume blocks until a message arrives or timeout elapses; (nil, nil) means no message.
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)

	// Ack deletes the message so it is not redelivered.
	Ack(queue string, jobID string) error
}

// Logger is the subset of pkg/logger the framework needs.
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
}

// ProcessorFunc is one stage of a PreProcessor chain.
type ProcessorFunc func(ctx context.Context) error

// BusinessHandler handles one parsed job. The returned bytes are the wrapped
// response (also on failure); the error drives the queue action.
type BusinessHandler interface {
	Handle(ctx context.Context) ([]byte, error)
}

// Resulter converts a business result into the response output.
type Resulter interface {
	Set(ctx context.Context, data interface{}) error
	Get(ctx context.Context) interface{}
}

// HandlerFactory builds the handler for one job.
type HandlerFactory func(ctx context.Context, baseHandler *BaseHandler) (BusinessHandler, error)
