package service

import (
	"context"

	"support-chat/internal/domain"
	"support-chat/internal/repository"
)

// threadView enriquece un hilo con los datos del creador y del asignado.
// Si la consulta de usuarios falla, la vista sale con ids pelados: el
// enriquecimiento es cosmetico y no voltea la operacion.
func threadView(ctx context.Context, users repository.UserRepository, t domain.Thread) domain.ThreadView {
	view := domain.ThreadView{
		ID:                    t.ID,
		Subject:               t.Subject,
		Status:                t.Status,
		CreatedAt:             t.CreatedAt,
		CreatedByUserID:       t.CreatedByUserID,
		ReservationID:         t.ReservationID,
		AssignedSupportUserID: t.AssignedSupportUserID,
	}

	ids := []string{t.CreatedByUserID}
	if t.AssignedSupportUserID != "" {
		ids = append(ids, t.AssignedSupportUserID)
	}
	known, err := users.ListByIDs(ctx, ids)
	if err != nil {
		return view
	}

	if creator, ok := known[t.CreatedByUserID]; ok {
		view.CreatedByName = creator.DisplayName()
		view.CreatedByEmail = creator.Email
	}
	if assignee, ok := known[t.AssignedSupportUserID]; ok {
		view.AssignedSupportName = assignee.DisplayName()
		view.AssignedSupportEmail = assignee.Email
	}
	return view
}

// threadViews enriquece un lote de hilos con una sola consulta de usuarios.
func threadViews(ctx context.Context, users repository.UserRepository, threads []domain.Thread) []domain.ThreadView {
	idSet := make(map[string]struct{})
	for _, t := range threads {
		idSet[t.CreatedByUserID] = struct{}{}
		if t.AssignedSupportUserID != "" {
			idSet[t.AssignedSupportUserID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	known, err := users.ListByIDs(ctx, ids)
	if err != nil {
		known = nil
	}

	views := make([]domain.ThreadView, 0, len(threads))
	for _, t := range threads {
		view := domain.ThreadView{
			ID:                    t.ID,
			Subject:               t.Subject,
			Status:                t.Status,
			CreatedAt:             t.CreatedAt,
			CreatedByUserID:       t.CreatedByUserID,
			ReservationID:         t.ReservationID,
			AssignedSupportUserID: t.AssignedSupportUserID,
		}
		if creator, ok := known[t.CreatedByUserID]; ok {
			view.CreatedByName = creator.DisplayName()
			view.CreatedByEmail = creator.Email
		}
		if assignee, ok := known[t.AssignedSupportUserID]; ok && t.AssignedSupportUserID != "" {
			view.AssignedSupportName = assignee.DisplayName()
			view.AssignedSupportEmail = assignee.Email
		}
		views = append(views, view)
	}
	return views
}

// messageView enriquece un mensaje con nombre y email del remitente; si el
// lookup falla quedan vacios.
func messageView(ctx context.Context, users repository.UserRepository, m domain.Message) domain.MessageView {
	view := domain.MessageView{
		ID:           m.ID,
		Content:      m.Content,
		SentAt:       m.SentAt,
		ThreadID:     m.ThreadID,
		SenderUserID: m.SenderUserID,
	}
	sender, err := users.GetByID(ctx, m.SenderUserID)
	if err != nil {
		return view
	}
	view.SenderName = sender.DisplayName()
	view.SenderEmail = sender.Email
	return view
}
