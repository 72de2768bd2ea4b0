package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"support-chat/internal/broadcast"
	"support-chat/internal/domain"
	"support-chat/internal/repository"
	"support-chat/internal/service"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
	wsSendBuffer = 256
)

// wsFrame es el frame JSON que manda el cliente por el socket.
type wsFrame struct {
	Type     string `json:"type"`
	Topic    string `json:"topic,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
	Content  string `json:"content,omitempty"`
	Typing   bool   `json:"typing,omitempty"`
}

// WSHandler atiende la conexion realtime: suscripciones a topics y eventos
// de chat entrantes. Los eventos entrantes son fire-and-forget, igual que en
// ChatService; las suscripciones si se autorizan aca, en el borde del
// transporte.
type WSHandler struct {
	logger   *zap.Logger
	hub      *broadcast.Hub
	threads  repository.ThreadRepository
	chat     *service.ChatService
	jwt      *service.JWTService
	upgrader websocket.Upgrader
}

func NewWSHandler(
	logger *zap.Logger,
	hub *broadcast.Hub,
	threads repository.ThreadRepository,
	chat *service.ChatService,
	jwt *service.JWTService,
) *WSHandler {
	return &WSHandler{
		logger:  logger,
		hub:     hub,
		threads: threads,
		chat:    chat,
		jwt:     jwt,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
	}
}

// Handle maneja GET /ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	identity, err := h.jwt.ResolveIdentity(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.NewSubscriber(wsSendBuffer)
	done := make(chan struct{})
	go h.writePump(conn, sub, done)
	h.readPump(c.Request.Context(), conn, sub, identity)

	sub.Close()
	<-done
	conn.Close()
}

func (h *WSHandler) readPump(ctx context.Context, conn *websocket.Conn, sub *broadcast.Subscriber, identity domain.Identity) {
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.String("user_id", identity.UserID), zap.Error(err))
			}
			return
		}

		switch frame.Type {
		case "subscribe":
			if h.allowSubscribe(ctx, identity, frame.Topic) {
				sub.Subscribe(frame.Topic)
			} else {
				h.logger.Debug("subscription rejected",
					zap.String("user_id", identity.UserID),
					zap.String("topic", frame.Topic),
				)
			}
		case "unsubscribe":
			sub.Unsubscribe(frame.Topic)
		case "chat.send":
			h.chat.SubmitMessage(ctx, identity, frame.ThreadID, frame.Content)
		case "chat.typing":
			h.chat.SubmitTyping(ctx, identity, frame.ThreadID, frame.Typing)
		default:
			// Frame desconocido: se ignora, como cualquier evento malformado.
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, sub *broadcast.Subscriber, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env, ok := <-sub.C():
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// allowSubscribe decide si la identidad puede adjuntarse al topic: el feed
// global es solo para SUPPORT, el feed de usuario solo para su dueño y los
// topics de hilo siguen la regla de acceso del hilo.
func (h *WSHandler) allowSubscribe(ctx context.Context, identity domain.Identity, topic string) bool {
	switch {
	case topic == broadcast.TopicThreads:
		return identity.IsSupport()
	case topic == broadcast.UserThreadsTopic(identity.UserID):
		return true
	default:
		threadID, ok := broadcast.ThreadIDFromTopic(topic)
		if !ok {
			return false
		}
		thread, err := h.threads.GetByID(ctx, threadID)
		if err != nil {
			return false
		}
		return domain.CanAccessThread(thread, identity)
	}
}
