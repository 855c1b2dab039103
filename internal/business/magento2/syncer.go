package magento2

import (
	"context"
	"time"

	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/logger"
)

// Syncer runs the status-update pipeline: resolve the order key, build the
// payload, deliver it under the retry policy.
type Syncer struct {
	client   *Client
	policy   RetryPolicy
	logger   logger.Logger
	recorder Recorder
	now      func() time.Time
}

type Option func(*Syncer)

// WithRecorder reports delivery failures and outcomes to rec.
func WithRecorder(rec Recorder) Option {
	return func(s *Syncer) { s.recorder = rec }
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

func NewSyncer(client *Client, policy RetryPolicy, log logger.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		client: client,
		policy: policy,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync posts the COVER status of one order as a Magento2 comment. Delivery
// failures never come back as errors: they are retried, then recorded in the
// returned state (Outcome suppressed, UpsertFailed false). Errors are returned
// for malformed upstream records, for ctx cancellation, and for requests that
// could not be built.
func (s *Syncer) Sync(ctx context.Context, req SyncRequest) (*PipelineState, error) {
	state := newPipelineState()

	chain := framework.NewPreProcessor([]framework.ProcessorFunc{
		s.resolveStage(req, state),
		s.buildStage(req, state),
		s.deliverStage(req, state),
	})
	if err := chain.Run(ctx); err != nil {
		return state, err
	}
	return state, nil
}

func (s *Syncer) resolveStage(req SyncRequest, state *PipelineState) framework.ProcessorFunc {
	return func(ctx context.Context) error {
		if req.ShopURL == "" {
			return &MissingFieldError{Record: "sync request", Path: "shop_url"}
		}
		orderID, err := ResolveOrderKey(req.CachedInput)
		if err != nil {
			return err
		}
		state.OrderIDUnique = orderID
		return nil
	}
}

func (s *Syncer) buildStage(req SyncRequest, state *PipelineState) framework.ProcessorFunc {
	return func(ctx context.Context) error {
		ctx = logger.WithOrderIDUnique(ctx, state.OrderIDUnique)

		update, err := BuildStatusUpdate(req.CoverResponse, s.now())
		if err != nil {
			return err
		}
		body, err := update.Marshal()
		if err != nil {
			s.logger.Errorf(ctx, "Error! While creating String from Magento2-Record: %v", err)
			return err
		}
		state.Magento2JSON = body
		s.logger.Infof(ctx, "Json body: %s", body)
		return nil
	}
}

func (s *Syncer) deliverStage(req SyncRequest, state *PipelineState) framework.ProcessorFunc {
	return func(ctx context.Context) error {
		ctx = logger.WithOrderIDUnique(ctx, state.OrderIDUnique)
		s.logger.Infof(ctx, "Body Update Magento2 %s", state.Magento2JSON)

		result, err := s.policy.Supervise(ctx, s.logger, s.recorder, func(ctx context.Context) ([]byte, error) {
			body, err := s.client.PostComment(ctx, req.ShopURL, req.ShopAuthToken, state.OrderIDUnique, state.Magento2JSON)
			if err != nil {
				return nil, err
			}
			if _, err := ParseResponse(body); err != nil {
				return nil, err
			}
			return body, nil
		})
		state.Attempts = result.Attempts
		state.Outcome = result.Outcome
		state.LastFailure = result.LastErr
		if err != nil {
			return err
		}

		if result.Outcome == OutcomeSuppressed {
			state.UpsertFailed = false
			return nil
		}

		state.ResponseBody = string(result.Body)
		s.logger.Infof(ctx, "Body after Magento2 Update: %s", state.ResponseBody)
		return nil
	}
}
