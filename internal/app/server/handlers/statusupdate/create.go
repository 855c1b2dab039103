package statusupdate

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cover/m2sync/internal/app/pkg/ginx"
	"cover/m2sync/internal/business"
	syncjob "cover/m2sync/internal/domains/handlers/order/statusupdate"
	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/errorutil"
)

// CreateStatusUpdateRequest is the body of POST /api/v1/status-updates.
type CreateStatusUpdateRequest struct {
	RequestID     string                 `json:"request_id" binding:"omitempty,max=64"`
	ShopURL       string                 `json:"shop_url" binding:"omitempty,url"`
	ShopAuthToken string                 `json:"shop_auth_token"`
	CachedInput   map[string]interface{} `json:"cached_input"`
	CoverResponse map[string]interface{} `json:"cover_response"`
}

func (r *CreateStatusUpdateRequest) toSyncInput() *business.SyncInput {
	return &business.SyncInput{
		RequestID:     r.RequestID,
		ShopURL:       r.ShopURL,
		ShopAuthToken: r.ShopAuthToken,
		CachedInput:   r.CachedInput,
		CoverResponse: r.CoverResponse,
	}
}

// Create runs a status sync.
// POST /api/v1/status-updates?async=true
func (h *StatusUpdateHandler) Create(c *gin.Context) {
	var req CreateStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		h.enqueue(c, &req)
		return
	}

	ctx := c.Request.Context()
	report, err := h.syncer.ExecuteSync(ctx, req.toSyncInput())
	if err != nil {
		h.logger.Errorf(ctx, "[StatusUpdateHandler] sync failed: %v", err)
		var e *errorutil.Error
		if errors.As(err, &e) && !e.Retryable {
			ginx.ErrorWithData(c, http.StatusBadRequest, e.Message, report)
			return
		}
		ginx.ErrorWithData(c, http.StatusInternalServerError, err.Error(), report)
		return
	}

	ginx.Success(c, report)
}

func (h *StatusUpdateHandler) enqueue(c *gin.Context, req *CreateStatusUpdateRequest) {
	ctx := c.Request.Context()
	if h.enqueuer == nil || h.queue == "" {
		ginx.Error(c, http.StatusServiceUnavailable, "async status updates are not configured")
		return
	}

	raw, err := framework.NewJob(framework.JobMeta{
		RequestID:  req.RequestID,
		ActionType: syncjob.ActionType,
	}, req.toSyncInput())
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	jobID, err := h.enqueuer.Publish(h.queue, raw, 0, 0)
	if err != nil {
		h.logger.Errorf(ctx, "[StatusUpdateHandler] enqueue failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	h.logger.Infof(ctx, "[StatusUpdateHandler] queued request %s as job %s", req.RequestID, jobID)
	ginx.Processing(c, req.RequestID, jobID, "/api/v1/status-updates/"+req.RequestID)
}
