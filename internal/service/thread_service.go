package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"support-chat/internal/broadcast"
	"support-chat/internal/domain"
	"support-chat/internal/repository"
)

// ThreadService maneja el ciclo de vida de los hilos (crear, reclamar,
// cerrar) y las lecturas acotadas por las reglas de acceso.
type ThreadService struct {
	logger       *zap.Logger
	threads      repository.ThreadRepository
	messages     repository.MessageRepository
	users        repository.UserRepository
	reservations repository.ReservationRepository
	publisher    broadcast.Publisher
}

func NewThreadService(
	logger *zap.Logger,
	threads repository.ThreadRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	reservations repository.ReservationRepository,
	publisher broadcast.Publisher,
) *ThreadService {
	return &ThreadService{
		logger:       logger,
		threads:      threads,
		messages:     messages,
		users:        users,
		reservations: reservations,
		publisher:    publisher,
	}
}

// Create abre un hilo nuevo para un CLIENT. La novedad se publica solo al
// topic del dueño: el feed global de soporte recien lo ve con el primer
// mensaje.
func (s *ThreadService) Create(ctx context.Context, identity domain.Identity, subject, reservationID string) (domain.ThreadView, error) {
	if !identity.IsClient() {
		return domain.ThreadView{}, ErrForbidden
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return domain.ThreadView{}, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}

	reservationID = strings.TrimSpace(reservationID)
	if reservationID != "" {
		reservation, err := s.reservations.GetByID(ctx, reservationID)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ThreadView{}, fmt.Errorf("%w: reservation", ErrNotFound)
		}
		if err != nil {
			return domain.ThreadView{}, storeError(err)
		}
		if reservation.UserID != identity.UserID {
			return domain.ThreadView{}, ErrForbidden
		}
	}

	thread := domain.Thread{
		ID:              uuid.NewString(),
		Subject:         subject,
		Status:          domain.ThreadStatusOpen,
		CreatedByUserID: identity.UserID,
		ReservationID:   reservationID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return domain.ThreadView{}, storeError(err)
	}

	view := threadView(ctx, s.users, thread)
	s.publisher.Publish(broadcast.UserThreadsTopic(thread.CreatedByUserID), view)
	return view, nil
}

// Claim asigna el hilo al agente. El primero que llega gana: la escritura
// condicional en el store decide la carrera, y perderla es ErrConflict.
func (s *ThreadService) Claim(ctx context.Context, identity domain.Identity, threadID string) (domain.ThreadView, error) {
	if !identity.IsSupport() {
		return domain.ThreadView{}, ErrForbidden
	}

	thread, err := s.threads.GetByID(ctx, threadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ThreadView{}, fmt.Errorf("%w: thread", ErrNotFound)
	}
	if err != nil {
		return domain.ThreadView{}, storeError(err)
	}

	hasMessages, err := s.messages.ExistsByThreadID(ctx, threadID)
	if err != nil {
		return domain.ThreadView{}, storeError(err)
	}
	if !hasMessages {
		return domain.ThreadView{}, fmt.Errorf("%w: no messages yet", ErrInvalidInput)
	}

	// Reclamar el propio hilo es un no-op: no se re-publica nada.
	if thread.AssignedSupportUserID == identity.UserID {
		return threadView(ctx, s.users, thread), nil
	}
	if thread.AssignedSupportUserID != "" {
		return domain.ThreadView{}, fmt.Errorf("%w: already assigned", ErrConflict)
	}
	if thread.Status == domain.ThreadStatusClosed {
		return domain.ThreadView{}, fmt.Errorf("%w: thread closed", ErrConflict)
	}

	claimed, err := s.threads.ClaimIfUnassigned(ctx, threadID, identity.UserID)
	if err != nil {
		return domain.ThreadView{}, storeError(err)
	}
	if !claimed {
		return domain.ThreadView{}, fmt.Errorf("%w: already assigned", ErrConflict)
	}
	thread.AssignedSupportUserID = identity.UserID

	view := threadView(ctx, s.users, thread)
	s.publisher.Publish(broadcast.TopicThreads, view)
	s.publisher.Publish(broadcast.UserThreadsTopic(thread.CreatedByUserID), view)
	s.publishClaimMessage(ctx, thread, identity.UserID)
	return view, nil
}

// publishClaimMessage inyecta el mensaje de sistema del claim en el hilo.
// Viene de la accion de lifecycle, asi que no pasa por el chequeo de
// escritura normal.
func (s *ThreadService) publishClaimMessage(ctx context.Context, thread domain.Thread, supportUserID string) {
	label := "un agent"
	var senderName, senderEmail string
	if support, err := s.users.GetByID(ctx, supportUserID); err == nil {
		senderName = support.DisplayName()
		senderEmail = support.Email
		if senderName != "" {
			label = senderName
		} else if support.Email != "" {
			label = support.Email
		}
	}

	message := domain.Message{
		ID:           uuid.NewString(),
		ThreadID:     thread.ID,
		SenderUserID: supportUserID,
		Content:      fmt.Sprintf("Votre ticket a ete pris en charge par %s.", label),
		SentAt:       time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		s.logger.Warn("claim message persist failed", zap.String("thread_id", thread.ID), zap.Error(err))
		return
	}

	s.publisher.Publish(broadcast.ThreadTopic(thread.ID), domain.MessageView{
		ID:           message.ID,
		Content:      message.Content,
		SentAt:       message.SentAt,
		ThreadID:     message.ThreadID,
		SenderUserID: message.SenderUserID,
		SenderName:   senderName,
		SenderEmail:  senderEmail,
	})
}

// Close marca el hilo como CLOSED. Solo el asignado puede cerrarlo; cerrar
// un hilo ya cerrado devuelve el estado actual sin publicar nada.
func (s *ThreadService) Close(ctx context.Context, identity domain.Identity, threadID string) (domain.ThreadView, error) {
	if !identity.IsSupport() {
		return domain.ThreadView{}, ErrForbidden
	}

	thread, err := s.threads.GetByID(ctx, threadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ThreadView{}, fmt.Errorf("%w: thread", ErrNotFound)
	}
	if err != nil {
		return domain.ThreadView{}, storeError(err)
	}

	if thread.AssignedSupportUserID == "" || thread.AssignedSupportUserID != identity.UserID {
		return domain.ThreadView{}, ErrForbidden
	}
	if thread.Status == domain.ThreadStatusClosed {
		return threadView(ctx, s.users, thread), nil
	}

	if err := s.threads.SetStatus(ctx, threadID, domain.ThreadStatusClosed); err != nil {
		return domain.ThreadView{}, storeError(err)
	}
	thread.Status = domain.ThreadStatusClosed

	view := threadView(ctx, s.users, thread)
	s.publisher.Publish(broadcast.TopicThreads, view)
	s.publisher.Publish(broadcast.UserThreadsTopic(thread.CreatedByUserID), view)
	return view, nil
}

// ListThreads devuelve los hilos visibles para la identidad: un CLIENT ve
// los propios, un SUPPORT ve los que tienen mensajes y estan sin asignar o
// asignados a el.
func (s *ThreadService) ListThreads(ctx context.Context, identity domain.Identity) ([]domain.ThreadView, error) {
	var (
		threads []domain.Thread
		err     error
	)
	switch {
	case identity.IsClient():
		threads, err = s.threads.ListByCreator(ctx, identity.UserID)
	case identity.IsSupport():
		threads, err = s.threads.ListVisibleToSupport(ctx, identity.UserID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, storeError(err)
	}
	return threadViews(ctx, s.users, threads), nil
}

// ListMessages devuelve el historial del hilo en orden de envio.
func (s *ThreadService) ListMessages(ctx context.Context, identity domain.Identity, threadID string) ([]domain.MessageView, error) {
	thread, err := s.threads.GetByID(ctx, threadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: thread", ErrNotFound)
	}
	if err != nil {
		return nil, storeError(err)
	}
	if !domain.CanAccessThread(thread, identity) {
		return nil, ErrForbidden
	}

	messages, err := s.messages.ListByThreadID(ctx, threadID)
	if err != nil {
		return nil, storeError(err)
	}

	idSet := make(map[string]struct{})
	for _, m := range messages {
		idSet[m.SenderUserID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	senders, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		senders = nil
	}

	views := make([]domain.MessageView, 0, len(messages))
	for _, m := range messages {
		view := domain.MessageView{
			ID:           m.ID,
			Content:      m.Content,
			SentAt:       m.SentAt,
			ThreadID:     m.ThreadID,
			SenderUserID: m.SenderUserID,
		}
		if sender, ok := senders[m.SenderUserID]; ok {
			view.SenderName = sender.DisplayName()
			view.SenderEmail = sender.Email
		}
		views = append(views, view)
	}
	return views, nil
}
