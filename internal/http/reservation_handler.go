package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"support-chat/internal/repository"
)

// ReservationHandler expone las reservas del usuario autenticado, para que
// el cliente pueda vincular un hilo a una reserva previa.
type ReservationHandler struct {
	logger       *zap.Logger
	reservations repository.ReservationRepository
}

func NewReservationHandler(logger *zap.Logger, reservations repository.ReservationRepository) *ReservationHandler {
	return &ReservationHandler{logger: logger, reservations: reservations}
}

// ListReservations maneja GET /api/reservations.
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	reservations, err := h.reservations.ListByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("list reservations failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}
