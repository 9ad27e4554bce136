package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
	"github.com/ignatzorin/asset-escrow/internal/domain/repository"
	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
)

// MemoryStore - хранилище сделок и лотов в памяти процесса.
// Используется в тестах и при STORE_DRIVER=memory.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*entity.Transaction
	messages     map[uuid.UUID][]*entity.Message
	listings     map[uuid.UUID]*entity.Listing
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[uuid.UUID]*entity.Transaction),
		messages:     make(map[uuid.UUID][]*entity.Message),
		listings:     make(map[uuid.UUID]*entity.Listing),
		now:          time.Now,
	}
}

// SetClock подменяет источник времени для updated_at.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// PutListing добавляет или заменяет лот.
func (s *MemoryStore) PutListing(listing *entity.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *listing
	s.listings[listing.ID] = &cp
}

func (s *MemoryStore) SaveListing(ctx context.Context, listing *entity.Listing) error {
	s.PutListing(listing)
	return nil
}

func (s *MemoryStore) GetListing(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[id]
	if !ok {
		return nil, apperror.ErrListingNotFound
	}
	cp := *listing
	return &cp, nil
}

func (s *MemoryStore) Create(ctx context.Context, t *entity.Transaction, initial *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[t.ID]; exists {
		return apperror.ErrTransactionExists
	}

	s.transactions[t.ID] = cloneTransaction(t)
	if initial != nil {
		s.messages[t.ID] = append(s.messages[t.ID], cloneMessage(initial))
	}
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, apperror.ErrTransactionNotFound
	}
	return cloneTransaction(t), nil
}

func (s *MemoryStore) Update(ctx context.Context, change repository.TransactionUpdate) (*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[change.ID]
	if !ok {
		return nil, apperror.ErrTransactionNotFound
	}
	if t.Status != change.ExpectedStatus {
		return nil, apperror.ErrConcurrentModification
	}

	updated := cloneTransaction(t)
	updated.Status = change.Status
	if change.DisputeReason != nil {
		reason := *change.DisputeReason
		updated.DisputeReason = &reason
	}
	updated.UpdatedAt = s.now()

	s.transactions[change.ID] = updated
	if change.Message != nil {
		s.messages[change.ID] = append(s.messages[change.ID], cloneMessage(change.Message))
	}
	return cloneTransaction(updated), nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, msg *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[msg.TransactionID]; !ok {
		return apperror.ErrTransactionNotFound
	}
	s.messages[msg.TransactionID] = append(s.messages[msg.TransactionID], cloneMessage(msg))
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uuid.UUID, role valueobject.PartyRole) ([]*entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entity.Transaction, 0)
	for _, t := range s.transactions {
		match := false
		switch role {
		case valueobject.PartyRoleBuyer:
			match = t.BuyerID == userID
		case valueobject.PartyRoleSeller:
			match = t.SellerID == userID
		default:
			match = t.BuyerID == userID || t.SellerID == userID
		}
		if match {
			result = append(result, cloneTransaction(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, transactionID uuid.UUID) ([]*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[transactionID]
	result := make([]*entity.Message, 0, len(stored))
	for _, m := range stored {
		result = append(result, cloneMessage(m))
	}
	return result, nil
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	cp := *t
	if t.VerificationDeadline != nil {
		deadline := *t.VerificationDeadline
		cp.VerificationDeadline = &deadline
	}
	if t.DisputeReason != nil {
		reason := *t.DisputeReason
		cp.DisputeReason = &reason
	}
	return &cp
}

func cloneMessage(m *entity.Message) *entity.Message {
	cp := *m
	cp.Attachments = append([]string{}, m.Attachments...)
	if m.SealedCredentials != nil {
		cp.SealedCredentials = append([]byte(nil), m.SealedCredentials...)
	}
	return &cp
}
