package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"support-chat/internal/broadcast"
	"support-chat/internal/domain"
)

type chatFixture struct {
	svc      *ChatService
	threads  *mockThreadRepo
	messages *mockMessageRepo
	users    *mockUserRepo
	pub      *capturePublisher
}

func newChatFixture(users ...domain.User) *chatFixture {
	messages := newMockMessageRepo()
	f := &chatFixture{
		threads:  newMockThreadRepo(messages),
		messages: messages,
		users:    newMockUserRepo(users...),
		pub:      &capturePublisher{},
	}
	f.svc = NewChatService(zap.NewNop(), f.threads, f.messages, f.users, f.pub)
	return f
}

func (f *chatFixture) seed(thread domain.Thread) {
	f.threads.threads[thread.ID] = thread
}

func TestChatSubmitMessage_DropsEmptyContent(t *testing.T) {
	f := newChatFixture()
	f.seed(domain.Thread{ID: "t1", Status: domain.ThreadStatusOpen, CreatedByUserID: "c1"})

	f.svc.SubmitMessage(testCtx, client, "t1", "   ")

	if len(f.pub.events) != 0 || len(f.messages.byThread["t1"]) != 0 {
		t.Fatalf("expected silent drop, got events=%v", f.pub.topics())
	}
}

func TestChatSubmitMessage_DropsMissingThread(t *testing.T) {
	f := newChatFixture()
	f.svc.SubmitMessage(testCtx, client, "nope", "hola")
	if len(f.pub.events) != 0 {
		t.Fatalf("expected silent drop on missing thread")
	}
}

func TestChatSubmitMessage_DropsUnauthorizedWriters(t *testing.T) {
	f := newChatFixture()
	f.seed(domain.Thread{ID: "t1", Status: domain.ThreadStatusOpen, CreatedByUserID: "c1"})

	// Otro cliente no accede; un agente no escribe sin reclamar.
	f.svc.SubmitMessage(testCtx, domain.Identity{UserID: "c2", Role: domain.RoleClient}, "t1", "hola")
	f.svc.SubmitMessage(testCtx, agent, "t1", "hola")

	if len(f.pub.events) != 0 || len(f.messages.byThread["t1"]) != 0 {
		t.Fatalf("expected silent drops, got events=%v", f.pub.topics())
	}
}

func TestChatSubmitMessage_DropsClosedThread(t *testing.T) {
	f := newChatFixture()
	f.seed(domain.Thread{ID: "t1", Status: domain.ThreadStatusClosed, CreatedByUserID: "c1", AssignedSupportUserID: "s1"})

	f.svc.SubmitMessage(testCtx, client, "t1", "hola")
	f.svc.SubmitMessage(testCtx, agent, "t1", "hola")

	if len(f.pub.events) != 0 || len(f.messages.byThread["t1"]) != 0 {
		t.Fatalf("expected closed thread to drop everything")
	}
}

func TestChatSubmitMessage_DropsOnStoreFailure(t *testing.T) {
	f := newChatFixture()
	f.seed(domain.Thread{ID: "t1", Status: domain.ThreadStatusOpen, CreatedByUserID: "c1"})
	f.messages.createErr = errors.New("store down")

	f.svc.SubmitMessage(testCtx, client, "t1", "hola")

	if len(f.pub.events) != 0 {
		t.Fatalf("expected drop when persist fails, got %v", f.pub.topics())
	}
}

func TestChatSubmitMessage_FirstMessageFanout(t *testing.T) {
	f := newChatFixture(domain.User{ID: "c1", Email: "c1@example.com", FirstName: "Ana", LastName: "Gomez"})
	f.seed(domain.Thread{ID: "t1", Subject: "Help", Status: domain.ThreadStatusOpen, CreatedByUserID: "c1"})

	f.svc.SubmitMessage(testCtx, client, "t1", "  Hello  ")

	topics := f.pub.topics()
	want := []string{
		broadcast.ThreadTopic("t1"),
		broadcast.TopicThreads,
		broadcast.UserThreadsTopic("c1"),
	}
	if len(topics) != len(want) {
		t.Fatalf("expected %v, got %v", want, topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, topics)
		}
	}

	msg, ok := f.pub.events[0].payload.(domain.MessageView)
	if !ok {
		t.Fatalf("expected MessageView payload, got %T", f.pub.events[0].payload)
	}
	if msg.Content != "Hello" || msg.SenderName != "Ana Gomez" || msg.SenderEmail != "c1@example.com" {
		t.Fatalf("unexpected message payload %+v", msg)
	}
	if msg.SentAt.IsZero() {
		t.Fatalf("expected sent_at assigned at persistence")
	}

	// El segundo mensaje ya no anuncia el hilo, solo va al topic del hilo.
	f.pub.reset()
	f.svc.SubmitMessage(testCtx, client, "t1", "Again")
	topics = f.pub.topics()
	if len(topics) != 1 || topics[0] != broadcast.ThreadTopic("t1") {
		t.Fatalf("expected only per-thread publish, got %v", topics)
	}
}

func TestChatSubmitMessage_SenderNameFallsBackToEmail(t *testing.T) {
	f := newChatFixture(domain.User{ID: "c1", Email: "c1@example.com"})
	f.seed(domain.Thread{ID: "t1", Status: domain.ThreadStatusOpen, CreatedByUserID: "c1"})
	f.messages.byThread["t1"] = []domain.Message{{ID: "m0", ThreadID: "t1", SenderUserID: "c1", Content: "x"}}

	f.svc.SubmitMessage(testCtx, client, "t1", "hola")

	msg := f.pub.events[0].payload.(domain.MessageView)
	if msg.SenderName != "c1@example.com" {
		t.Fatalf("expected email fallback, got %q", msg.SenderName)
	}
}

func TestChatSubmitTyping_PublishesToTypingTopic(t *testing.T) {
	f := newChatFixture(domain.User{ID: "c1", Email: "c1@example.com", FirstName: "Ana"})
	f.seed(domain.Thread{ID: "t1", Status: domain.ThreadStatusOpen, CreatedByUserID: "c1"})

	f.svc.SubmitTyping(testCtx, client, "t1", true)

	if len(f.pub.events) != 1 {
		t.Fatalf("expected one publish, got %v", f.pub.topics())
	}
	if f.pub.events[0].topic != broadcast.ThreadTypingTopic("t1") {
		t.Fatalf("unexpected topic %q", f.pub.events[0].topic)
	}
	signal, ok := f.pub.events[0].payload.(domain.TypingSignal)
	if !ok {
		t.Fatalf("expected TypingSignal payload, got %T", f.pub.events[0].payload)
	}
	if !signal.Typing || signal.SenderUserID != "c1" || signal.SenderName != "Ana" {
		t.Fatalf("unexpected signal %+v", signal)
	}
}

func TestChatSubmitTyping_SameDropPolicyAsMessages(t *testing.T) {
	f := newChatFixture()
	f.seed(domain.Thread{ID: "t1", Status: domain.ThreadStatusOpen, CreatedByUserID: "c1"})

	f.svc.SubmitTyping(testCtx, agent, "t1", true)
	f.svc.SubmitTyping(testCtx, client, "nope", true)

	if len(f.pub.events) != 0 {
		t.Fatalf("expected typing drops, got %v", f.pub.topics())
	}
}

// Recorrido completo: crear, claim prematuro, primer mensaje, claim, claim
// rival, cierre y mensaje sobre hilo cerrado.
func TestSupportThreadEndToEnd(t *testing.T) {
	users := []domain.User{
		{ID: "c1", Email: "c1@example.com", FirstName: "Ana", LastName: "Gomez"},
		{ID: "s1", Email: "s1@example.com", FirstName: "Luc", LastName: "Martin"},
		{ID: "s2", Email: "s2@example.com"},
	}
	messagesRepo := newMockMessageRepo()
	threadsRepo := newMockThreadRepo(messagesRepo)
	usersRepo := newMockUserRepo(users...)
	pub := &capturePublisher{}

	threadSvc := NewThreadService(zap.NewNop(), threadsRepo, messagesRepo, usersRepo, newMockReservationRepo(), pub)
	chatSvc := NewChatService(zap.NewNop(), threadsRepo, messagesRepo, usersRepo, pub)

	view, err := threadSvc.Create(testCtx, client, "Help", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Status != domain.ThreadStatusOpen || view.AssignedSupportUserID != "" {
		t.Fatalf("unexpected created thread %+v", view)
	}
	threadID := view.ID

	if _, err := threadSvc.Claim(testCtx, agent, threadID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput before first message, got %v", err)
	}

	pub.reset()
	chatSvc.SubmitMessage(testCtx, client, threadID, "Hello")
	topics := pub.topics()
	if len(topics) != 3 {
		t.Fatalf("expected first-message triple fanout, got %v", topics)
	}

	if _, err := threadSvc.Claim(testCtx, agent, threadID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if threadsRepo.threads[threadID].AssignedSupportUserID != "s1" {
		t.Fatalf("expected s1 assigned")
	}

	if _, err := threadSvc.Claim(testCtx, agent2, threadID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for rival claim, got %v", err)
	}

	closed, err := threadSvc.Close(testCtx, agent, threadID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.ThreadStatusClosed {
		t.Fatalf("expected CLOSED, got %q", closed.Status)
	}

	pub.reset()
	before := len(messagesRepo.byThread[threadID])
	chatSvc.SubmitMessage(testCtx, client, threadID, "Anyone there?")
	if len(pub.events) != 0 || len(messagesRepo.byThread[threadID]) != before {
		t.Fatalf("expected message on closed thread to be dropped silently")
	}
}
