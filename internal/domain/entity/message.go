package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
)

// Шаблоны системных сообщений.
const (
	MessageTransactionInitiated = "Transaction initiated. Payment has been placed in escrow."
	MessageAssetVerified        = "Asset verified successfully. Funds have been released to seller."
	MessageTransactionCancelled = "Transaction cancelled by seller. Payment has been returned to buyer."
	MessageCredentialsSent      = "Credentials have been sent. Please verify the asset."
	messageDisputeOpened        = "Dispute opened by %s: %s"
)

// DisputeOpenedMessage формирует текст системного сообщения об открытии спора.
func DisputeOpenedMessage(role valueobject.PartyRole, reason string) string {
	return fmt.Sprintf(messageDisputeOpened, role, reason)
}

// Message - запись в ленте сделки. Системные сообщения создаёт только сервис сделок.
type Message struct {
	ID                uuid.UUID
	TransactionID     uuid.UUID
	SenderID          uuid.UUID
	Content           string
	IsSystemMessage   bool
	Attachments       []string
	SealedCredentials []byte
	CreatedAt         time.Time
}

func NewSystemMessage(transactionID, senderID uuid.UUID, content string, now time.Time) *Message {
	return &Message{
		ID:              uuid.New(),
		TransactionID:   transactionID,
		SenderID:        senderID,
		Content:         content,
		IsSystemMessage: true,
		Attachments:     []string{},
		CreatedAt:       now,
	}
}

func NewMessage(transactionID, senderID uuid.UUID, content string, attachments []string, now time.Time) (*Message, error) {
	if content == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "сообщение не может быть пустым")
	}
	// ссылки хранятся в том виде, в котором прошли валидацию
	cleaned := make([]string, 0, len(attachments))
	for _, link := range attachments {
		cleaned = append(cleaned, strings.TrimSpace(link))
	}
	return &Message{
		ID:            uuid.New(),
		TransactionID: transactionID,
		SenderID:      senderID,
		Content:       content,
		Attachments:   cleaned,
		CreatedAt:     now,
	}, nil
}

func (m *Message) HasCredentials() bool {
	return len(m.SealedCredentials) > 0
}
