package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"support-chat/internal/service"
)

// ThreadHandler expone la API REST de hilos de soporte.
type ThreadHandler struct {
	logger  *zap.Logger
	threads *service.ThreadService
}

func NewThreadHandler(logger *zap.Logger, threads *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{logger: logger, threads: threads}
}

// ListThreads maneja GET /api/threads.
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	views, err := h.threads.ListThreads(c.Request.Context(), identity)
	if err != nil {
		h.logger.Warn("list threads failed", zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateThread maneja POST /api/threads.
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		Subject       string `json:"subject"`
		ReservationID string `json:"reservationId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	view, err := h.threads.Create(c.Request.Context(), identity, req.Subject, req.ReservationID)
	if err != nil {
		h.logger.Warn("create thread failed", zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ClaimThread maneja POST /api/threads/:threadId/claim.
func (h *ThreadHandler) ClaimThread(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	view, err := h.threads.Claim(c.Request.Context(), identity, c.Param("threadId"))
	if err != nil {
		h.logger.Warn("claim thread failed", zap.String("thread_id", c.Param("threadId")), zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CloseThread maneja POST /api/threads/:threadId/close.
func (h *ThreadHandler) CloseThread(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	view, err := h.threads.Close(c.Request.Context(), identity, c.Param("threadId"))
	if err != nil {
		h.logger.Warn("close thread failed", zap.String("thread_id", c.Param("threadId")), zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListMessages maneja GET /api/threads/:threadId/messages.
func (h *ThreadHandler) ListMessages(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	views, err := h.threads.ListMessages(c.Request.Context(), identity, c.Param("threadId"))
	if err != nil {
		h.logger.Warn("list messages failed", zap.String("thread_id", c.Param("threadId")), zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
