package domain

import "github.com/shopspring/decimal"

// PriceSummary — итог по корзине. Всегда вычисляется из Cart и нигде не хранится.
type PriceSummary struct {
	Subtotal          decimal.Decimal
	ServiceFee        decimal.Decimal
	TransportationFee decimal.Decimal
	Total             decimal.Decimal
}
