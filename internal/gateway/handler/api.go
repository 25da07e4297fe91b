package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"accsetup/internal/advisor"
)

type generateRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Car         string `json:"car"`
	Track       string `json:"track"`
	Style       string `json:"style"`
}

type refineRequest struct {
	Feedback string `json:"feedback"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Catalog())
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apiError{"invalid_argument", err.Error()}})
		return
	}
	sel := advisor.Selection{Car: req.Car, Track: req.Track, Style: req.Style}
	view, err := h.svc.Generate(c.Request.Context(), req.WorkspaceID, sel)
	if err != nil {
		status, body := describe(err, h.lang(c))
		if status >= http.StatusInternalServerError {
			log.Printf("api generate failed: %v", err)
		}
		c.JSON(status, gin.H{"error": body, "workspaceId": view.ID})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) GetSession(c *gin.Context) {
	view, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) RefineSession(c *gin.Context) {
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apiError{"invalid_argument", err.Error()}})
		return
	}
	view, err := h.svc.Refine(c.Request.Context(), c.Param("id"), req.Feedback)
	if err != nil {
		h.fail(c, "refine", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) SessionHistory(c *gin.Context) {
	recs, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (h *Handler) ExportSession(c *gin.Context) {
	ex, err := h.svc.Export(c.Request.Context(), c.Param("id"), "/api/exports")
	if err != nil {
		h.fail(c, "export", err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (h *Handler) DownloadExport(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	raw, err := h.svc.ReadExport(c.Request.Context(), key)
	if err != nil {
		h.fail(c, "download", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.svc.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": apiError{"not_found", "workspace not found"}})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status, body := describe(err, h.lang(c))
	if status >= http.StatusInternalServerError {
		log.Printf("api %s failed: %v", op, err)
	}
	c.JSON(status, gin.H{"error": body})
}
