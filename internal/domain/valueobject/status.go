package valueobject

import "github.com/ignatzorin/asset-escrow/internal/pkg/apperror"

type TransactionStatus string

const (
	TransactionStatusPaymentReceived TransactionStatus = "payment_received"
	TransactionStatusCredentialsSent TransactionStatus = "credentials_sent"
	TransactionStatusVerified        TransactionStatus = "verified"
	TransactionStatusCompleted       TransactionStatus = "completed"
	TransactionStatusDisputed        TransactionStatus = "disputed"
	TransactionStatusCancelled       TransactionStatus = "cancelled"
)

// transactionTransitions - единственный источник допустимых переходов.
var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPaymentReceived: {TransactionStatusCredentialsSent, TransactionStatusDisputed, TransactionStatusCancelled},
	TransactionStatusCredentialsSent: {TransactionStatusCredentialsSent, TransactionStatusCompleted, TransactionStatusDisputed},
	TransactionStatusVerified:        {TransactionStatusCompleted, TransactionStatusDisputed},
	TransactionStatusCompleted:       {},
	TransactionStatusDisputed:        {},
	TransactionStatusCancelled:       {},
}

func (s TransactionStatus) IsValid() bool {
	_, ok := transactionTransitions[s]
	return ok
}

func (s TransactionStatus) CanTransitionTo(newStatus TransactionStatus) bool {
	allowed, ok := transactionTransitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, что из статуса нет исходящих переходов.
func (s TransactionStatus) IsTerminal() bool {
	return s.IsValid() && len(transactionTransitions[s]) == 0
}

func NewTransactionStatus(status string) (TransactionStatus, error) {
	s := TransactionStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус сделки")
	}
	return s, nil
}

// PartyRole - роль участника сделки.
type PartyRole string

const (
	PartyRoleAny    PartyRole = ""
	PartyRoleBuyer  PartyRole = "buyer"
	PartyRoleSeller PartyRole = "seller"
)

func NewPartyRole(role string) (PartyRole, error) {
	switch PartyRole(role) {
	case PartyRoleAny, PartyRoleBuyer, PartyRoleSeller:
		return PartyRole(role), nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "роль должна быть buyer или seller")
}
