package valueobject

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
)

// MoneyPrecision - количество знаков после запятой для денежных сумм.
const MoneyPrecision int32 = 2

// FeeRate - комиссия платформы, удерживаемая и с покупателя, и с продавца.
var FeeRate = decimal.RequireFromString("0.025")

// FeeBreakdown - расчёт комиссий по цене актива.
type FeeBreakdown struct {
	AssetPrice          decimal.Decimal
	BuyerFee            decimal.Decimal
	SellerFee           decimal.Decimal
	TotalBuyerPays      decimal.Decimal
	TotalSellerReceives decimal.Decimal
}

// ValidateAmount проверяет, что сумма положительна и укладывается в точность до цента.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(MoneyPrecision)) {
		return apperror.ErrAmountPrecision
	}
	return nil
}

// ComputeFees считает комиссии и итоговые суммы. Функция чистая и детерминированная.
func ComputeFees(amount decimal.Decimal) (FeeBreakdown, error) {
	if err := ValidateAmount(amount); err != nil {
		return FeeBreakdown{}, err
	}

	fee := amount.Mul(FeeRate).Round(MoneyPrecision)

	return FeeBreakdown{
		AssetPrice:          amount,
		BuyerFee:            fee,
		SellerFee:           fee,
		TotalBuyerPays:      amount.Add(fee),
		TotalSellerReceives: amount.Sub(fee),
	}, nil
}

// AmountFromFloat переводит float в decimal, отбрасывая NaN, бесконечности и неположительные значения.
func AmountFromFloat(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return decimal.Zero, apperror.ErrInvalidAmount
	}
	amount := decimal.NewFromFloat(v)
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ParseAmount разбирает сумму из строки.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Wrap(err, apperror.ErrCodeInvalidAmount, "некорректный формат суммы")
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}
