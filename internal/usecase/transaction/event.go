package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
)

// MessageEvent - полезная нагрузка события transaction.message.
// Данные доступа в событие не попадают.
type MessageEvent struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	Status          string    `json:"status"`
	MessageID       uuid.UUID `json:"message_id"`
	SenderID        uuid.UUID `json:"sender_id"`
	Content         string    `json:"content"`
	IsSystemMessage bool      `json:"is_system_message"`
	Attachments     []string  `json:"attachments"`
	HasCredentials  bool      `json:"has_credentials"`
	CreatedAt       time.Time `json:"created_at"`
}

func newMessageEvent(t *entity.Transaction, msg *entity.Message) MessageEvent {
	return MessageEvent{
		TransactionID:   t.ID,
		Status:          string(t.Status),
		MessageID:       msg.ID,
		SenderID:        msg.SenderID,
		Content:         msg.Content,
		IsSystemMessage: msg.IsSystemMessage,
		Attachments:     msg.Attachments,
		HasCredentials:  msg.HasCredentials(),
		CreatedAt:       msg.CreatedAt,
	}
}
