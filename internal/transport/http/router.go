package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/workshop17/ticketing-engine/internal/transport/http/handler"
	"github.com/workshop17/ticketing-engine/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, ops *handler.OpsHandler, opsToken string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/healthz", ops.Liveness)
	r.GET("/readyz", ops.Readiness)

	// Protected operational routes
	protected := r.Group("/housekeeping", middleware.OpsToken(opsToken))
	protected.GET("/status", ops.Status)
	protected.POST("/run", ops.Run)

	return r
}
