package domain

import "time"

// Message es inmutable una vez persistido; SentAt se asigna al guardarlo.
type Message struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"threadId"`
	SenderUserID string    `json:"senderUserId"`
	Content      string    `json:"content"`
	SentAt       time.Time `json:"sentAt"`
}

// MessageView agrega nombre y email del remitente para los consumidores.
type MessageView struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	SentAt       time.Time `json:"sentAt"`
	ThreadID     string    `json:"threadId"`
	SenderUserID string    `json:"senderUserId"`
	SenderName   string    `json:"senderName,omitempty"`
	SenderEmail  string    `json:"senderEmail,omitempty"`
}

// TypingSignal es efimero: nunca se persiste, solo se publica al topic de
// typing del hilo.
type TypingSignal struct {
	ThreadID     string `json:"threadId"`
	SenderUserID string `json:"senderUserId"`
	SenderName   string `json:"senderName,omitempty"`
	SenderEmail  string `json:"senderEmail,omitempty"`
	Typing       bool   `json:"typing"`
}
