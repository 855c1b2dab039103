package business

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"cover/m2sync/internal/business/magento2"
	"cover/m2sync/pkg/errorutil"
	"cover/m2sync/pkg/infra/mysql"
	"cover/m2sync/pkg/infra/redis"
	"cover/m2sync/pkg/logger"
)

// Syncer runs one status-update pipeline.
type Syncer interface {
	Sync(ctx context.Context, req magento2.SyncRequest) (*magento2.PipelineState, error)
}

// DocumentCache serves the documents cached by the COVER submission step.
type DocumentCache interface {
	LoadInput(ctx context.Context, requestID string) (map[string]interface{}, error)
	LoadCoverResponse(ctx context.Context, requestID string) (map[string]interface{}, error)
}

// AuditLog persists one row per sync.
type AuditLog interface {
	Record(ctx context.Context, entry *mysql.StatusSyncLog) error
}

// Notifier announces sync results.
type Notifier interface {
	PublishSyncResult(ctx context.Context, notification *redis.SyncNotification) error
}

// CallbackPublisher puts callback messages on a queue.
type CallbackPublisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) (string, error)
}

// ShopDefaults fill in shop_url and shop_auth_token when a request omits them.
type ShopDefaults struct {
	ShopURL       string
	ShopAuthToken string
}

// SyncInput is one status sync as received from the queue or the ingress.
// Absent documents are loaded from the cache by RequestID.
type SyncInput struct {
	RequestID     string                 `json:"request_id"`
	ShopURL       string                 `json:"shop_url"`
	ShopAuthToken string                 `json:"shop_auth_token"`
	CachedInput   map[string]interface{} `json:"cached_input,omitempty"`
	CoverResponse map[string]interface{} `json:"cover_response,omitempty"`
}

// SyncReport summarizes one status sync.
type SyncReport struct {
	RequestID     string `json:"request_id"`
	OrderIDUnique string `json:"order_id_unique,omitempty"`
	Status        string `json:"status"`
	Attempts      int    `json:"attempts"`
	UpsertFailed  bool   `json:"upsert_failed"`
	Magento2JSON  string `json:"magento2_json,omitempty"`
	ResponseBody  string `json:"response_body,omitempty"`
	Error         string `json:"error,omitempty"`
}

// StatusSyncCallback is published on the callback queue after every sync.
type StatusSyncCallback struct {
	RequestID   string      `json:"request_id"`
	Status      string      `json:"status"`
	Report      *SyncReport `json:"report"`
	ProcessedAt int64       `json:"processed_at"`
}

// StatusSyncService runs syncs and fans their results out to the audit log,
// the notification channel and the callback queue. Every collaborator except
// the syncer is optional.
type StatusSyncService struct {
	syncer        Syncer
	cache         DocumentCache
	audit         AuditLog
	notifier      Notifier
	publisher     CallbackPublisher
	callbackQueue string
	defaults      ShopDefaults
	logger        logger.Logger
}

type ServiceOption func(*StatusSyncService)

func WithCache(cache DocumentCache) ServiceOption {
	return func(s *StatusSyncService) { s.cache = cache }
}

func WithAuditLog(audit AuditLog) ServiceOption {
	return func(s *StatusSyncService) { s.audit = audit }
}

func WithNotifier(notifier Notifier) ServiceOption {
	return func(s *StatusSyncService) { s.notifier = notifier }
}

func WithCallback(publisher CallbackPublisher, queue string) ServiceOption {
	return func(s *StatusSyncService) {
		s.publisher = publisher
		s.callbackQueue = queue
	}
}

func WithShopDefaults(defaults ShopDefaults) ServiceOption {
	return func(s *StatusSyncService) { s.defaults = defaults }
}

func NewStatusSyncService(syncer Syncer, log logger.Logger, opts ...ServiceOption) *StatusSyncService {
	s := &StatusSyncService{
		syncer: syncer,
		logger: log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExecuteSync runs one sync. Delivery failures end in a report with status
// SUPPRESSED and a nil error. Returned errors are *errorutil.Error:
// non-retriable for malformed upstream documents, retriable for
// infrastructure failures.
func (s *StatusSyncService) ExecuteSync(ctx context.Context, input *SyncInput) (*SyncReport, error) {
	ctx = logger.WithTraceID(ctx, input.RequestID)

	req, err := s.buildRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	state, syncErr := s.syncer.Sync(ctx, req)
	report := newReport(input.RequestID, state, syncErr)

	if syncErr != nil {
		s.logger.Errorf(ctx, "[StatusSyncService] sync aborted: %v", syncErr)
	} else {
		s.logger.Infof(ctx, "[StatusSyncService] sync finished: order=%s status=%s attempts=%d",
			report.OrderIDUnique, report.Status, report.Attempts)
	}

	s.recordAudit(ctx, report)
	s.notify(ctx, report)
	s.publishCallback(ctx, report)

	if syncErr == nil {
		return report, nil
	}
	if magento2.IsDataContract(syncErr) {
		return report, errorutil.NonRetriableWrap(syncErr, "status sync aborted")
	}
	return report, errorutil.RetriableWrap(syncErr, "status sync interrupted")
}

func (s *StatusSyncService) buildRequest(ctx context.Context, input *SyncInput) (magento2.SyncRequest, error) {
	req := magento2.SyncRequest{
		ShopURL:       input.ShopURL,
		ShopAuthToken: input.ShopAuthToken,
		CachedInput:   magento2.CachedOrderInput(input.CachedInput),
		CoverResponse: magento2.CoverResponse(input.CoverResponse),
	}
	if req.ShopURL == "" {
		req.ShopURL = s.defaults.ShopURL
	}
	if req.ShopAuthToken == "" {
		req.ShopAuthToken = s.defaults.ShopAuthToken
	}

	if s.cache == nil || input.RequestID == "" {
		return req, nil
	}

	if req.CachedInput == nil {
		doc, err := s.cache.LoadInput(ctx, input.RequestID)
		if err != nil && !errors.Is(err, redis.ErrDocumentNotFound) {
			return req, errorutil.RetriableWrap(err, "load cached input failed")
		}
		req.CachedInput = magento2.CachedOrderInput(doc)
	}
	if req.CoverResponse == nil {
		doc, err := s.cache.LoadCoverResponse(ctx, input.RequestID)
		if err != nil && !errors.Is(err, redis.ErrDocumentNotFound) {
			return req, errorutil.RetriableWrap(err, "load cover response failed")
		}
		req.CoverResponse = magento2.CoverResponse(doc)
	}
	return req, nil
}

func newReport(requestID string, state *magento2.PipelineState, syncErr error) *SyncReport {
	report := &SyncReport{RequestID: requestID, UpsertFailed: true}
	if state != nil {
		report.OrderIDUnique = state.OrderIDUnique
		report.Attempts = state.Attempts
		report.UpsertFailed = state.UpsertFailed
		report.Magento2JSON = state.Magento2JSON
		report.ResponseBody = state.ResponseBody
	}

	switch {
	case syncErr != nil:
		report.Status = mysql.SyncStatusAborted
		report.Error = syncErr.Error()
	case state != nil && state.Outcome == magento2.OutcomeSuppressed:
		report.Status = mysql.SyncStatusSuppressed
		if state.LastFailure != nil {
			report.Error = state.LastFailure.Error()
		}
	default:
		report.Status = mysql.SyncStatusDelivered
	}
	return report
}

func (s *StatusSyncService) recordAudit(ctx context.Context, report *SyncReport) {
	if s.audit == nil {
		return
	}
	entry := &mysql.StatusSyncLog{
		RequestID:     report.RequestID,
		OrderIDUnique: report.OrderIDUnique,
		Status:        report.Status,
		Attempts:      report.Attempts,
		UpsertFailed:  report.UpsertFailed,
		ErrorMessage:  report.Error,
	}
	if report.Magento2JSON != "" {
		entry.Payload = datatypes.JSON(report.Magento2JSON)
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warnf(ctx, "[StatusSyncService] audit failed: %v", err)
	}
}

func (s *StatusSyncService) notify(ctx context.Context, report *SyncReport) {
	if s.notifier == nil || report.OrderIDUnique == "" {
		return
	}
	notification := &redis.SyncNotification{
		RequestID:     report.RequestID,
		OrderIDUnique: report.OrderIDUnique,
		Status:        report.Status,
		Attempts:      report.Attempts,
		UpsertFailed:  report.UpsertFailed,
		Timestamp:     time.Now().Unix(),
	}
	if err := s.notifier.PublishSyncResult(ctx, notification); err != nil {
		s.logger.Warnf(ctx, "[StatusSyncService] notify failed: %v", err)
	}
}

func (s *StatusSyncService) publishCallback(ctx context.Context, report *SyncReport) {
	if s.publisher == nil || s.callbackQueue == "" {
		return
	}
	callback := StatusSyncCallback{
		RequestID:   report.RequestID,
		Status:      report.Status,
		Report:      report,
		ProcessedAt: time.Now().Unix(),
	}
	callbackJSON, err := json.Marshal(callback)
	if err != nil {
		s.logger.Warnf(ctx, "[StatusSyncService] marshal callback failed: %v", err)
		return
	}
	// ttl=0 never expires, delay=0 available at once
	if _, err := s.publisher.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
		s.logger.Warnf(ctx, "[StatusSyncService] %v", fmt.Errorf("publish callback failed: %w", err))
	}
}
