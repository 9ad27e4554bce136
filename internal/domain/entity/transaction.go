package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
)

// VerificationWindow - время, отведённое покупателю на проверку актива.
const VerificationWindow = 72 * time.Hour

// Transaction - сделка с удержанием средств (escrow).
type Transaction struct {
	ID                   uuid.UUID
	BuyerID              uuid.UUID
	SellerID             uuid.UUID
	ListingID            uuid.UUID
	Amount               decimal.Decimal
	BuyerFee             decimal.Decimal
	SellerFee            decimal.Decimal
	TotalAmount          decimal.Decimal
	Status               valueobject.TransactionStatus
	VerificationDeadline *time.Time
	DisputeReason        *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewTransaction открывает сделку по лоту. Средства покупателя уже удержаны,
// поэтому сделка сразу создаётся в статусе payment_received.
func NewTransaction(buyerID uuid.UUID, listing *Listing, now time.Time) (*Transaction, error) {
	if listing == nil {
		return nil, apperror.ErrListingNotFound
	}
	if buyerID == listing.SellerID {
		return nil, apperror.ErrSelfTransaction
	}
	if !listing.IsPurchasable() {
		return nil, apperror.ErrListingUnavailable
	}

	fees, err := valueobject.ComputeFees(listing.Price)
	if err != nil {
		return nil, err
	}

	deadline := now.Add(VerificationWindow)

	return &Transaction{
		ID:                   uuid.New(),
		BuyerID:              buyerID,
		SellerID:             listing.SellerID,
		ListingID:            listing.ID,
		Amount:               fees.AssetPrice,
		BuyerFee:             fees.BuyerFee,
		SellerFee:            fees.SellerFee,
		TotalAmount:          fees.TotalBuyerPays,
		Status:               valueobject.TransactionStatusPaymentReceived,
		VerificationDeadline: &deadline,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// RoleOf возвращает роль пользователя в сделке.
func (t *Transaction) RoleOf(userID uuid.UUID) (valueobject.PartyRole, bool) {
	switch userID {
	case t.BuyerID:
		return valueobject.PartyRoleBuyer, true
	case t.SellerID:
		return valueobject.PartyRoleSeller, true
	}
	return valueobject.PartyRoleAny, false
}

func (t *Transaction) IsParticipant(userID uuid.UUID) bool {
	_, ok := t.RoleOf(userID)
	return ok
}

// TotalSellerReceives - сумма, которую получит продавец при завершении сделки.
func (t *Transaction) TotalSellerReceives() decimal.Decimal {
	return t.Amount.Sub(t.SellerFee)
}

func (t *Transaction) SendCredentials(actorID uuid.UUID, now time.Time) error {
	if actorID != t.SellerID {
		return apperror.New(apperror.ErrCodeForbidden, "передать данные доступа может только продавец")
	}
	return t.moveTo(valueobject.TransactionStatusCredentialsSent, now,
		"невозможно передать данные доступа в текущем статусе")
}

func (t *Transaction) Verify(actorID uuid.UUID, now time.Time) error {
	if actorID != t.BuyerID {
		return apperror.New(apperror.ErrCodeForbidden, "подтвердить получение может только покупатель")
	}
	if t.Status != valueobject.TransactionStatusCredentialsSent {
		return apperror.New(apperror.ErrCodeInvalidTransition, "данные доступа ещё не переданы")
	}
	return t.moveTo(valueobject.TransactionStatusCompleted, now,
		"невозможно подтвердить сделку в текущем статусе")
}

// Dispute открывает спор и возвращает роль инициатора.
func (t *Transaction) Dispute(actorID uuid.UUID, reason string, now time.Time) (valueobject.PartyRole, error) {
	role, ok := t.RoleOf(actorID)
	if !ok {
		return role, apperror.ErrNotParticipant
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return role, apperror.New(apperror.ErrCodeValidation, "причина спора обязательна")
	}

	if err := t.moveTo(valueobject.TransactionStatusDisputed, now,
		"невозможно открыть спор в текущем статусе"); err != nil {
		return role, err
	}
	t.DisputeReason = &reason
	return role, nil
}

func (t *Transaction) Cancel(actorID uuid.UUID, now time.Time) error {
	if actorID != t.SellerID {
		return apperror.New(apperror.ErrCodeForbidden, "отменить сделку может только продавец")
	}
	return t.moveTo(valueobject.TransactionStatusCancelled, now,
		"невозможно отменить сделку в текущем статусе")
}

func (t *Transaction) moveTo(next valueobject.TransactionStatus, now time.Time, failure string) error {
	if !t.Status.CanTransitionTo(next) {
		return apperror.New(apperror.ErrCodeInvalidTransition, failure)
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}
