package domain

import (
	"errors"
	"time"
)

// ErrMalformedEvent возвращается, если событие не содержит обязательных полей.
var ErrMalformedEvent = errors.New("событие не содержит обязательных полей")

// MessageEvent — сырое событие от источника сообщений.
// Text и MediaType необязательны, остальные поля обязательны.
type MessageEvent struct {
	OwnerUserID int64  `json:"owner_user_id"`
	MessageID   int64  `json:"message_id"`
	ChatID      int64  `json:"chat_id"`
	SenderID    int64  `json:"sender_id"`
	Text        string `json:"text,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
}

// Validate проверяет обязательные поля события.
func (e MessageEvent) Validate() error {
	if e.OwnerUserID == 0 || e.MessageID == 0 || e.ChatID == 0 || e.SenderID == 0 {
		return ErrMalformedEvent
	}
	return nil
}

// NewMessageRecord переводит событие в запись журнала, привязанную к моменту приёма.
// Час и день недели выводятся из момента приёма; неделя начинается с понедельника.
func NewMessageRecord(e MessageEvent, capturedAt time.Time) MessageRecord {
	return MessageRecord{
		Timestamp:  capturedAt,
		MessageID:  e.MessageID,
		ChatID:     e.ChatID,
		SenderID:   e.SenderID,
		TextLength: len([]rune(e.Text)),
		HasMedia:   e.MediaType != "",
		Hour:       capturedAt.Hour(),
		Weekday:    (int(capturedAt.Weekday()) + 6) % 7,
	}
}
