package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cover/m2sync/internal/app/server/handlers/statusupdate"
	"cover/m2sync/internal/app/server/middlewares"
	"cover/m2sync/pkg/logger"
)

// SetupRoutes wires every route. metricsHandler and obs may be nil.
func SetupRoutes(
	statusHandler *statusupdate.StatusUpdateHandler,
	metricsHandler http.Handler,
	obs middlewares.RequestObserver,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.Logger(log, obs))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "m2sync",
		})
	})

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/api/v1")
	{
		updates := v1.Group("/status-updates")
		{
			updates.POST("", statusHandler.Create)
			updates.GET("/:request_id", statusHandler.Get)
		}
	}

	return r
}
