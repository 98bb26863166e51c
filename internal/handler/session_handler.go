package handler

import (
	"github.com/gin-gonic/gin"

	"parseview/internal/middleware"
	"parseview/internal/service"
)

// SessionHandler exposes the caller's session state.
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// State handles GET /api/v1/session
// @Summary Get the session's upload state
// @Tags session
// @Produce json
// @Success 200 {object} Response{data=domain.SessionState}
// @Router /session [get]
func (h *SessionHandler) State(c *gin.Context) {
	state, err := h.sessions.State(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, state)
}

// Discard handles DELETE /api/v1/session
// @Summary Discard the session's result
// @Tags session
// @Produce json
// @Success 200 {object} Response
// @Failure 409 {object} ErrorResponseBody "Upload in progress"
// @Router /session [delete]
func (h *SessionHandler) Discard(c *gin.Context) {
	if err := h.sessions.Discard(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "session result discarded"})
}
