package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cover/m2sync/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestObserver records one finished request.
type RequestObserver interface {
	ObserveRequest(handler string, status int, latencyMS float64)
}

// Logger tags the request context with a trace id, logs the request and
// reports it to obs when obs is not nil.
func Logger(log logger.Logger, obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(requestIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Header(requestIDHeader, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		latency := time.Since(start)
		status := c.Writer.Status()

		log.Infof(c.Request.Context(), "[HTTP] %s %s %d %v", c.Request.Method, route, status, latency)
		if obs != nil {
			obs.ObserveRequest(route, status, float64(latency.Microseconds())/1000)
		}
	}
}
