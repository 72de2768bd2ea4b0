package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"support-chat/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	threadH *ThreadHandler,
	reservationH *ReservationHandler,
	wsH *WSHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.POST("/api/auth/login", authH.Login)

	// El socket valida el token por query param en el upgrade.
	r.GET("/ws", wsH.Handle)

	api := r.Group("/api")
	api.Use(JWTAuthMiddleware(jwtSvc))
	api.GET("/threads", threadH.ListThreads)
	api.POST("/threads", threadH.CreateThread)
	api.POST("/threads/:threadId/claim", threadH.ClaimThread)
	api.POST("/threads/:threadId/close", threadH.CloseThread)
	api.GET("/threads/:threadId/messages", threadH.ListMessages)
	api.GET("/reservations", reservationH.ListReservations)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
