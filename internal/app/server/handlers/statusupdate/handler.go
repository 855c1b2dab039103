package statusupdate

import (
	"context"

	"cover/m2sync/internal/business"
	"cover/m2sync/pkg/infra/mysql"
	"cover/m2sync/pkg/logger"
)

// Syncer runs a status sync inline.
type Syncer interface {
	ExecuteSync(ctx context.Context, input *business.SyncInput) (*business.SyncReport, error)
}

// Enqueuer publishes a job on the worker queue.
type Enqueuer interface {
	Publish(queue string, data []byte, ttl, delay uint32) (string, error)
}

// LogReader lists the audit rows of one request.
type LogReader interface {
	FindByRequestID(ctx context.Context, requestID string) ([]mysql.StatusSyncLog, error)
}

// StatusUpdateHandler serves /api/v1/status-updates. enqueuer and logs are
// optional; the routes that need them answer 503 without.
type StatusUpdateHandler struct {
	syncer   Syncer
	enqueuer Enqueuer
	queue    string
	logs     LogReader
	logger   logger.Logger
}

func NewStatusUpdateHandler(syncer Syncer, enqueuer Enqueuer, queue string, logs LogReader, log logger.Logger) *StatusUpdateHandler {
	return &StatusUpdateHandler{
		syncer:   syncer,
		enqueuer: enqueuer,
		queue:    queue,
		logs:     logs,
		logger:   log,
	}
}
