package magento2

import (
	"context"
	"errors"
	"time"

	"cover/m2sync/pkg/logger"
)

const (
	DefaultRedeliveryAttempts = 2
	DefaultRedeliveryDelay    = 1000 * time.Millisecond
)

// FailureClass groups delivery failures that share one retry budget.
type FailureClass int

const (
	FailureTransport FailureClass = iota + 1
	FailureParse
)

func (c FailureClass) String() string {
	switch c {
	case FailureTransport:
		return "transport"
	case FailureParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of a supervised delivery.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeDelivered
	OutcomeSuppressed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeSuppressed:
		return "suppressed"
	default:
		return "none"
	}
}

// DeliveryResult is what Supervise hands back instead of an error once the
// delivery either went through or was given up on.
type DeliveryResult struct {
	Outcome  Outcome
	Attempts int
	Body     []byte
	LastErr  error
}

// Recorder receives delivery telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordFailure(class string, retrying bool)
	RecordOutcome(outcome string, attempts int)
}

// RetryPolicy retries each failure class independently: after the first
// failure of a class, up to RedeliveryAttempts more failures of that class are
// retried, each after a fixed RedeliveryDelay.
type RetryPolicy struct {
	RedeliveryAttempts int
	RedeliveryDelay    time.Duration
}

// DefaultRetryPolicy returns 2 redeliveries, 1s apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		RedeliveryAttempts: DefaultRedeliveryAttempts,
		RedeliveryDelay:    DefaultRedeliveryDelay,
	}
}

// Supervise runs attempt until it succeeds or a failure class exhausts its
// budget. Only context cancellation and unclassified errors are returned as
// errors; an exhausted budget yields OutcomeSuppressed.
func (p RetryPolicy) Supervise(ctx context.Context, log logger.Logger, rec Recorder, attempt func(ctx context.Context) ([]byte, error)) (DeliveryResult, error) {
	failures := make(map[FailureClass]int, 2)
	result := DeliveryResult{}

	for {
		result.Attempts++
		body, err := attempt(ctx)
		if err == nil {
			result.Outcome = OutcomeDelivered
			result.Body = body
			result.LastErr = nil
			p.recordOutcome(rec, result)
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		class, ok := classify(err)
		if !ok {
			return result, err
		}

		result.LastErr = err
		failures[class]++
		retrying := failures[class] <= p.RedeliveryAttempts
		logFailure(ctx, log, err, failures[class], retrying)
		if rec != nil {
			rec.RecordFailure(class.String(), retrying)
		}

		if !retrying {
			log.Errorf(ctx, "Upsert failed - %s retries exhausted after %d attempts, continuing without status comment",
				class, result.Attempts)
			result.Outcome = OutcomeSuppressed
			p.recordOutcome(rec, result)
			return result, nil
		}

		if err := wait(ctx, p.RedeliveryDelay); err != nil {
			return result, err
		}
	}
}

func (p RetryPolicy) recordOutcome(rec Recorder, result DeliveryResult) {
	if rec != nil {
		rec.RecordOutcome(result.Outcome.String(), result.Attempts)
	}
}

func classify(err error) (FailureClass, bool) {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return FailureTransport, true
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return FailureParse, true
	}
	return 0, false
}

func logFailure(ctx context.Context, log logger.Logger, err error, failure int, retrying bool) {
	var transportErr *TransportError
	var parseErr *ParseError
	switch {
	case errors.As(err, &transportErr):
		log.Errorf(ctx, "Upsert failed - we make Retry: %d - %s - %s (failure %d, retrying=%t, cause=%v)",
			transportErr.StatusCode, transportErr.StatusText, transportErr.Body, failure, retrying, transportErr.Err)
	case errors.As(err, &parseErr):
		log.Errorf(ctx, "Upsert failed - we make Retry: %s - %s (failure %d, retrying=%t)",
			parseErr.Message, parseErr.Body, failure, retrying)
	}
}

// wait blocks for d or until ctx is done. It holds no lock.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
