package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cover/m2sync/internal/app/pkg/ginx"
	"cover/m2sync/pkg/logger"
)

// ErrorHandler turns panics and errors left on the context into a 500.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				ginx.InternalError(c, "internal server error")
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Errorf(c.Request.Context(), "[HTTP] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
			ginx.Error(c, http.StatusInternalServerError, err.Error())
		}
	}
}
