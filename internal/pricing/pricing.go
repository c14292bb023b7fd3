// Package pricing вычисляет итог корзины по фиксированным правилам.
// Округление здесь не выполняется: до двух знаков округляет только слой представления.
package pricing

import (
	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// Rules — ставка сервисного сбора и фиксированная стоимость доставки.
type Rules struct {
	ServiceFeeRate    decimal.Decimal
	TransportationFee decimal.Decimal
}

// DefaultRules: сервисный сбор 5% от subtotal, доставка 2.99.
func DefaultRules() Rules {
	return Rules{
		ServiceFeeRate:    decimal.RequireFromString("0.05"),
		TransportationFee: decimal.RequireFromString("2.99"),
	}
}

// Calculate считает итог по правилам по умолчанию.
func Calculate(cart domain.Cart) domain.PriceSummary {
	return DefaultRules().Calculate(cart)
}

// Calculate: чистая функция Cart -> PriceSummary.
func (r Rules) Calculate(cart domain.Cart) domain.PriceSummary {
	subtotal := Subtotal(cart)
	serviceFee := subtotal.Mul(r.ServiceFeeRate)

	return domain.PriceSummary{
		Subtotal:          subtotal,
		ServiceFee:        serviceFee,
		TransportationFee: r.TransportationFee,
		Total:             subtotal.Add(serviceFee).Add(r.TransportationFee),
	}
}

// Subtotal суммирует price * quantity по всем позициям.
func Subtotal(cart domain.Cart) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range cart.Lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	return subtotal
}
