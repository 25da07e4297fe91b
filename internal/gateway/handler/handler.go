package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"accsetup/internal/gateway/service/workspace"
)

// Handler serves the HTML front end, the JSON API and the websocket channel
// on top of one workspace service.
type Handler struct {
	svc    *workspace.Service
	locale string
}

func New(svc *workspace.Service, locale string) *Handler {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = "hu"
	}
	return &Handler{svc: svc, locale: locale}
}

// lang picks the message language: ?lang= wins over the configured locale.
func (h *Handler) lang(c *gin.Context) string {
	if l := strings.TrimSpace(c.Query("lang")); l != "" {
		return l
	}
	return h.locale
}
