package handlers

import (
	"net/http"

	"github.com/steveyiyo/voicerelay/pkg/types"
	"github.com/steveyiyo/voicerelay/pkg/ws"

	"github.com/gin-gonic/gin"
)

type SessionsHandler struct {
	Hub *ws.Hub
}

func NewSessionsHandler(h *ws.Hub) *SessionsHandler {
	return &SessionsHandler{Hub: h}
}

func (h *SessionsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.Hub.Summaries()})
}

func (h *SessionsHandler) Get(c *gin.Context) {
	e, ok := h.Hub.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResp{Error: "not_found"})
		return
	}
	c.JSON(http.StatusOK, e.Summary())
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResp{Status: "ok", Message: "voice relay is running"})
}
