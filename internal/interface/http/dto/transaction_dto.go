package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
)

type CreateTransactionRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

type SendCredentialsRequest struct {
	Credentials string   `json:"credentials"`
	Note        string   `json:"note"`
	Attachments []string `json:"attachments"`
}

type DisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResponse - сделка в ответе API. Суммы сериализуются строками с двумя знаками.
type TransactionResponse struct {
	ID                   uuid.UUID  `json:"id"`
	BuyerID              uuid.UUID  `json:"buyer_id"`
	SellerID             uuid.UUID  `json:"seller_id"`
	ListingID            uuid.UUID  `json:"listing_id"`
	Amount               string     `json:"amount"`
	BuyerFee             string     `json:"buyer_fee"`
	SellerFee            string     `json:"seller_fee"`
	TotalAmount          string     `json:"total_amount"`
	SellerReceives       string     `json:"seller_receives"`
	Status               string     `json:"status"`
	VerificationDeadline *time.Time `json:"verification_deadline"`
	DisputeReason        *string    `json:"dispute_reason"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type MessageResponse struct {
	ID              uuid.UUID `json:"id"`
	TransactionID   uuid.UUID `json:"transaction_id"`
	SenderID        uuid.UUID `json:"sender_id"`
	Content         string    `json:"content"`
	IsSystemMessage bool      `json:"is_system_message"`
	Attachments     []string  `json:"attachments"`
	HasCredentials  bool      `json:"has_credentials"`
	CreatedAt       time.Time `json:"created_at"`
}

type CredentialsResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Credentials   string    `json:"credentials"`
}

type FeeQuoteResponse struct {
	AssetPrice          string `json:"asset_price"`
	BuyerFee            string `json:"buyer_fee"`
	SellerFee           string `json:"seller_fee"`
	TotalBuyerPays      string `json:"total_buyer_pays"`
	TotalSellerReceives string `json:"total_seller_receives"`
}

// Money форматирует сумму с двумя знаками после запятой.
func Money(d decimal.Decimal) string {
	return d.StringFixed(valueobject.MoneyPrecision)
}

func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                   t.ID,
		BuyerID:              t.BuyerID,
		SellerID:             t.SellerID,
		ListingID:            t.ListingID,
		Amount:               Money(t.Amount),
		BuyerFee:             Money(t.BuyerFee),
		SellerFee:            Money(t.SellerFee),
		TotalAmount:          Money(t.TotalAmount),
		SellerReceives:       Money(t.TotalSellerReceives()),
		Status:               string(t.Status),
		VerificationDeadline: t.VerificationDeadline,
		DisputeReason:        t.DisputeReason,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func ToTransactionListResponse(items []*entity.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, 0, len(items))
	for _, t := range items {
		result = append(result, ToTransactionResponse(t))
	}
	return result
}

func ToMessageResponse(m *entity.Message) MessageResponse {
	attachments := m.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return MessageResponse{
		ID:              m.ID,
		TransactionID:   m.TransactionID,
		SenderID:        m.SenderID,
		Content:         m.Content,
		IsSystemMessage: m.IsSystemMessage,
		Attachments:     attachments,
		HasCredentials:  m.HasCredentials(),
		CreatedAt:       m.CreatedAt,
	}
}

func ToMessageListResponse(items []*entity.Message) []MessageResponse {
	result := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		result = append(result, ToMessageResponse(m))
	}
	return result
}

func ToFeeQuoteResponse(f valueobject.FeeBreakdown) FeeQuoteResponse {
	return FeeQuoteResponse{
		AssetPrice:          Money(f.AssetPrice),
		BuyerFee:            Money(f.BuyerFee),
		SellerFee:           Money(f.SellerFee),
		TotalBuyerPays:      Money(f.TotalBuyerPays),
		TotalSellerReceives: Money(f.TotalSellerReceives),
	}
}
