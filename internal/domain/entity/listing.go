package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ListingStatusActive = "active"

// Listing - лот маркетплейса. Сервис сделок читает его, но не изменяет.
type Listing struct {
	ID       uuid.UUID
	SellerID uuid.UUID
	Title    string
	Price    decimal.Decimal
	Status   string
}

func (l *Listing) IsPurchasable() bool {
	return l.Status == ListingStatusActive
}
