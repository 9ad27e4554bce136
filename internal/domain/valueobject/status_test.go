package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from valueobject.TransactionStatus
		to   valueobject.TransactionStatus
		want bool
	}{
		{valueobject.TransactionStatusPaymentReceived, valueobject.TransactionStatusCredentialsSent, true},
		{valueobject.TransactionStatusPaymentReceived, valueobject.TransactionStatusDisputed, true},
		{valueobject.TransactionStatusPaymentReceived, valueobject.TransactionStatusCancelled, true},
		{valueobject.TransactionStatusPaymentReceived, valueobject.TransactionStatusCompleted, false},
		{valueobject.TransactionStatusCredentialsSent, valueobject.TransactionStatusCredentialsSent, true},
		{valueobject.TransactionStatusCredentialsSent, valueobject.TransactionStatusCompleted, true},
		{valueobject.TransactionStatusCredentialsSent, valueobject.TransactionStatusDisputed, true},
		{valueobject.TransactionStatusCredentialsSent, valueobject.TransactionStatusCancelled, false},
		{valueobject.TransactionStatusVerified, valueobject.TransactionStatusCompleted, true},
		{valueobject.TransactionStatusCompleted, valueobject.TransactionStatusDisputed, false},
		{valueobject.TransactionStatusDisputed, valueobject.TransactionStatusCompleted, false},
		{valueobject.TransactionStatusCancelled, valueobject.TransactionStatusCredentialsSent, false},
		{valueobject.TransactionStatus("unknown"), valueobject.TransactionStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.True(t, valueobject.TransactionStatusCompleted.IsTerminal())
	assert.True(t, valueobject.TransactionStatusDisputed.IsTerminal())
	assert.True(t, valueobject.TransactionStatusCancelled.IsTerminal())
	assert.False(t, valueobject.TransactionStatusPaymentReceived.IsTerminal())
	assert.False(t, valueobject.TransactionStatus("bogus").IsTerminal())
}

func TestNewTransactionStatus(t *testing.T) {
	s, err := valueobject.NewTransactionStatus("disputed")
	assert.NoError(t, err)
	assert.Equal(t, valueobject.TransactionStatusDisputed, s)

	_, err = valueobject.NewTransactionStatus("refunded")
	assert.Error(t, err)
}

func TestNewPartyRole(t *testing.T) {
	for _, ok := range []string{"", "buyer", "seller"} {
		_, err := valueobject.NewPartyRole(ok)
		assert.NoError(t, err, ok)
	}
	_, err := valueobject.NewPartyRole("admin")
	assert.Error(t, err)
}
