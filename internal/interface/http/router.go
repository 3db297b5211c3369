package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comfortlab/roomsense/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		corsMiddleware(cfg.HTTP.CORS.AllowedOrigins),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/rooms", handler.ListRooms)
		api.GET("/rooms/:id", handler.GetRoom)
		api.GET("/rooms/:id/sensors/:kind", handler.GetSensor)
		api.GET("/warnings", handler.ListWarnings)
		api.POST("/rooms/:id/occupancy/labels", handler.SubmitLabel)

		operator := api.Group("/labels", operatorAuth(cfg.Auth.Secret))
		{
			operator.GET("/export", handler.ExportLabels)
			operator.POST("/archive", handler.ArchiveLabels)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
