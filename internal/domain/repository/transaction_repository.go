package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
)

// TransactionRepository - контракт хранилища сделок.
type TransactionRepository interface {
	// Create сохраняет сделку вместе с первым сообщением.
	Create(ctx context.Context, tx *entity.Transaction, initial *entity.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	// Update применяет изменение, только если статус в хранилище равен ExpectedStatus.
	// Обновление сделки и добавление сообщения выполняются атомарно, updated_at обновляется всегда.
	Update(ctx context.Context, change TransactionUpdate) (*entity.Transaction, error)
	AppendMessage(ctx context.Context, msg *entity.Message) error
	ListByUser(ctx context.Context, userID uuid.UUID, role valueobject.PartyRole) ([]*entity.Transaction, error)
	ListMessages(ctx context.Context, transactionID uuid.UUID) ([]*entity.Message, error)
}

// TransactionUpdate - изменение статуса сделки с условием на предыдущий статус.
type TransactionUpdate struct {
	ID             uuid.UUID
	ExpectedStatus valueobject.TransactionStatus
	Status         valueobject.TransactionStatus
	DisputeReason  *string
	Message        *entity.Message
}

// ListingProvider - источник лотов маркетплейса (только чтение).
type ListingProvider interface {
	GetListing(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
}

// ListingWriter пополняет каталог лотов. Используется только демо-наполнением.
type ListingWriter interface {
	SaveListing(ctx context.Context, listing *entity.Listing) error
}
