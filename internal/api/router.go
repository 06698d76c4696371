package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"texgallery/internal/config"
	"texgallery/internal/logging"
	"texgallery/internal/studio"
)

// Server holds the handlers for one studio session.
type Server struct {
	studio *studio.Studio
	logger *slog.Logger
}

// NewRouter registers every API route on a fresh gin engine.
func NewRouter(st *studio.Studio, cfg config.API, logger *slog.Logger) *gin.Engine {
	logger = logging.NewComponentLogger(logger, "api")
	s := &Server{studio: st, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestContext())
	r.Use(requestLogger(logger))
	r.Use(corsMiddleware(cfg.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	{
		api.GET("/status", s.getStatus)
		api.GET("/progress", s.getProgress)

		// Assets
		api.GET("/assets", s.listAssets)
		api.GET("/assets/:type/:folder/:filename", s.getAsset)
		api.GET("/assets/:type/:folder/:filename/content", s.getContent)
		api.POST("/assets/:type/:folder/:filename/edit", s.editAsset)
		api.POST("/prefetch", s.prefetch)

		// Selection and bulk edits
		api.POST("/selection", s.setSelection)
		api.DELETE("/selection", s.clearSelection)
		api.POST("/selection/mode", s.setMode)
		api.POST("/bulk", s.bulkEdit)

		// Export and session
		api.GET("/export", s.export)
		api.GET("/session", s.getSession)
		api.POST("/session", s.restoreSession)

		// Mod builder
		api.GET("/groups", s.listGroups)
		api.GET("/groups/:group", s.getGroup)
		api.POST("/groups/:group/files/:folder/:filename", s.setGroupRecord)
		api.DELETE("/groups/:group/files/:folder/:filename", s.clearGroupRecord)
		api.GET("/groups/:group/pack", s.buildPack)
	}
	return r
}
