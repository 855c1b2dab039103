package statusupdate

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cover/m2sync/internal/app/pkg/ginx"
)

// Get lists the audit rows of one request.
// GET /api/v1/status-updates/:request_id
func (h *StatusUpdateHandler) Get(c *gin.Context) {
	if h.logs == nil {
		ginx.Error(c, http.StatusServiceUnavailable, "sync log is not configured")
		return
	}

	requestID := c.Param("request_id")
	logs, err := h.logs.FindByRequestID(c.Request.Context(), requestID)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}
	if len(logs) == 0 {
		ginx.NotFound(c, "no status sync for request "+requestID)
		return
	}
	ginx.Success(c, logs)
}
