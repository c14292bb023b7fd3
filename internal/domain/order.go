package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID string
	Quantity  int
}

// OrderRequest — заказ, отправляемый во внешний сервис. После отправки не хранится.
type OrderRequest struct {
	Items           []OrderItem
	DeliveryAddress string
}

// OrderConfirmation — ответ внешнего сервиса о созданном заказе.
type OrderConfirmation struct {
	OrderID           string
	UserID            string
	Status            string
	Subtotal          decimal.Decimal
	ServiceFee        decimal.Decimal
	TransportationFee decimal.Decimal
	Total             decimal.Decimal
	DeliveryAddress   string
	CreatedAt         time.Time
}

// Receipt — чек успешного заказа для архива.
type Receipt struct {
	Confirmation OrderConfirmation
	Lines        []CartLine
	Summary      PriceSummary
	IdentityID   string
	SessionID    string
	IssuedAt     time.Time
}

func NewOrderRequest(cart Cart, deliveryAddress string) *OrderRequest {
	items := make([]OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, OrderItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	return &OrderRequest{
		Items:           items,
		DeliveryAddress: deliveryAddress,
	}
}
