package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accsetup/internal/gateway/handler"
	"accsetup/internal/gateway/middleware"
)

// NewRouter builds the gin engine with every route and wraps it in CORS
// restricted to origins (any origin when none are given). The request
// logger is only installed outside production.
func NewRouter(h *handler.Handler, env string, origins ...string) http.Handler {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if env != "production" {
		r.Use(gin.Logger())
	}
	r.SetHTMLTemplate(handler.Templates())

	// Pages
	r.GET("/", h.Index)
	r.POST("/generate", h.Generate)
	r.POST("/refine", h.Refine)
	r.GET("/ws", h.Live)
	r.GET("/healthz", h.Health)

	// JSON API
	api := r.Group("/api")
	api.GET("/options", h.Options)
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
	api.POST("/sessions/:id/refine", h.RefineSession)
	api.GET("/sessions/:id/history", h.SessionHistory)
	api.POST("/sessions/:id/export", h.ExportSession)
	api.GET("/exports/*key", h.DownloadExport)

	return middleware.CORS(origins...)(r)
}
