package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"support-chat/internal/broadcast"
	"support-chat/internal/domain"
	"support-chat/internal/repository"
)

// ChatService procesa los eventos efimeros del chat: mensajes entrantes y
// señales de typing. Es fire-and-forget: un evento malformado o no
// autorizado se descarta en silencio, el emisor nunca recibe un error. Los
// descartes quedan en el log a nivel debug.
type ChatService struct {
	logger    *zap.Logger
	threads   repository.ThreadRepository
	messages  repository.MessageRepository
	users     repository.UserRepository
	publisher broadcast.Publisher
}

func NewChatService(
	logger *zap.Logger,
	threads repository.ThreadRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	publisher broadcast.Publisher,
) *ChatService {
	return &ChatService{
		logger:    logger,
		threads:   threads,
		messages:  messages,
		users:     users,
		publisher: publisher,
	}
}

// SubmitMessage valida, persiste y difunde un mensaje entrante. El primer
// mensaje de un hilo ademas lo anuncia al feed global de soporte y al feed
// del dueño: recien ahi el hilo se vuelve visible.
func (s *ChatService) SubmitMessage(ctx context.Context, identity domain.Identity, threadID, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		s.drop(threadID, "empty content")
		return
	}

	thread, ok := s.writableThread(ctx, identity, threadID)
	if !ok {
		return
	}

	hadMessages, err := s.messages.ExistsByThreadID(ctx, thread.ID)
	if err != nil {
		s.drop(thread.ID, "store unavailable")
		return
	}

	message := domain.Message{
		ID:           uuid.NewString(),
		ThreadID:     thread.ID,
		SenderUserID: identity.UserID,
		Content:      content,
		SentAt:       time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		s.drop(thread.ID, "store unavailable")
		return
	}

	s.publisher.Publish(broadcast.ThreadTopic(thread.ID), messageView(ctx, s.users, message))

	if !hadMessages {
		view := threadView(ctx, s.users, thread)
		s.publisher.Publish(broadcast.TopicThreads, view)
		s.publisher.Publish(broadcast.UserThreadsTopic(thread.CreatedByUserID), view)
	}
}

// SubmitTyping difunde una señal de typing al topic del hilo. Nunca se
// persiste; vale "la mas reciente gana" por emisor.
func (s *ChatService) SubmitTyping(ctx context.Context, identity domain.Identity, threadID string, typing bool) {
	thread, ok := s.writableThread(ctx, identity, threadID)
	if !ok {
		return
	}

	signal := domain.TypingSignal{
		ThreadID:     thread.ID,
		SenderUserID: identity.UserID,
		Typing:       typing,
	}
	if sender, err := s.users.GetByID(ctx, identity.UserID); err == nil {
		signal.SenderName = sender.DisplayName()
		signal.SenderEmail = sender.Email
	}

	s.publisher.Publish(broadcast.ThreadTypingTopic(thread.ID), signal)
}

// writableThread resuelve el hilo y aplica la regla de escritura; cualquier
// falla termina en descarte silencioso.
func (s *ChatService) writableThread(ctx context.Context, identity domain.Identity, threadID string) (domain.Thread, bool) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		s.drop(threadID, "empty thread id")
		return domain.Thread{}, false
	}

	thread, err := s.threads.GetByID(ctx, threadID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.drop(threadID, "thread not found")
		return domain.Thread{}, false
	}
	if err != nil {
		s.drop(threadID, "store unavailable")
		return domain.Thread{}, false
	}

	if !domain.CanWriteThread(thread, identity) {
		s.drop(threadID, "write not allowed")
		return domain.Thread{}, false
	}
	return thread, true
}

func (s *ChatService) drop(threadID, reason string) {
	s.logger.Debug("chat event dropped",
		zap.String("thread_id", threadID),
		zap.String("reason", reason),
	)
}
