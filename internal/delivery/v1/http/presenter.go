package http

import (
	"errors"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/shopspring/decimal"
)

// Денежные суммы в ответах округляются до двух знаков только здесь.
const moneyPlaces = 2

func money(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Stock       int    `json:"stock"`
}

type CategoryResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type CatalogResponse struct {
	Products   []ProductResponse  `json:"products"`
	Categories []CategoryResponse `json:"categories"`
}

type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	ImageURL  string `json:"image_url"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type PriceSummaryResponse struct {
	Subtotal          string `json:"subtotal"`
	ServiceFee        string `json:"service_fee"`
	TransportationFee string `json:"transportation_fee"`
	Total             string `json:"total"`
}

type CartResponse struct {
	SessionID string               `json:"session_id"`
	Items     []CartItemResponse   `json:"items"`
	ItemCount int                  `json:"item_count"`
	Summary   PriceSummaryResponse `json:"summary"`
	Persisted bool                 `json:"persisted"`
}

type IdentityResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"is_admin"`
}

type SessionResponse struct {
	SessionID     string            `json:"session_id"`
	Authenticated bool              `json:"authenticated"`
	User          *IdentityResponse `json:"user,omitempty"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
}

type OrderResponse struct {
	OrderID           string    `json:"order_id"`
	UserID            string    `json:"user_id"`
	Status            string    `json:"status"`
	Subtotal          string    `json:"subtotal"`
	ServiceFee        string    `json:"service_fee"`
	TransportationFee string    `json:"transportation_fee"`
	Total             string    `json:"total"`
	DeliveryAddress   string    `json:"delivery_address"`
	CreatedAt         time.Time `json:"created_at"`
}

type CheckoutErrorResponse struct {
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail"`
}

type CheckoutStatusResponse struct {
	AttemptID string                 `json:"attempt_id"`
	State     string                 `json:"state"`
	Order     *OrderResponse         `json:"order,omitempty"`
	Error     *CheckoutErrorResponse `json:"error,omitempty"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       money(p.Price),
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
	}
}

func toProductsResponse(products []domain.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}
	return result
}

func toCategoriesResponse(categories []domain.Category) []CategoryResponse {
	result := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryResponse{Category: c.Name, Count: c.Count})
	}
	return result
}

func toCartResponse(view *usecase.CartView, persisted bool) CartResponse {
	items := make([]CartItemResponse, 0, len(view.Cart.Lines))
	for _, l := range view.Cart.Lines {
		items = append(items, CartItemResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     money(l.Price),
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
			LineTotal: money(l.LineTotal()),
		})
	}

	return CartResponse{
		SessionID: view.SessionID,
		Items:     items,
		ItemCount: view.ItemCount,
		Summary: PriceSummaryResponse{
			Subtotal:          money(view.Summary.Subtotal),
			ServiceFee:        money(view.Summary.ServiceFee),
			TransportationFee: money(view.Summary.TransportationFee),
			Total:             money(view.Summary.Total),
		},
		Persisted: persisted,
	}
}

func toSessionResponse(sessionID string, session *domain.Session) SessionResponse {
	if session == nil {
		return SessionResponse{SessionID: sessionID}
	}

	return SessionResponse{
		SessionID:     sessionID,
		Authenticated: true,
		User: &IdentityResponse{
			ID:       session.Identity.ID,
			Email:    session.Identity.Email,
			FullName: session.Identity.FullName,
			Address:  session.Identity.Address,
			Phone:    session.Identity.Phone,
			IsAdmin:  session.Identity.IsAdmin,
		},
		ExpiresAt: session.ExpiresAt,
	}
}

func toOrderResponse(o domain.OrderConfirmation) OrderResponse {
	return OrderResponse{
		OrderID:           o.OrderID,
		UserID:            o.UserID,
		Status:            o.Status,
		Subtotal:          money(o.Subtotal),
		ServiceFee:        money(o.ServiceFee),
		TransportationFee: money(o.TransportationFee),
		Total:             money(o.Total),
		DeliveryAddress:   o.DeliveryAddress,
		CreatedAt:         o.CreatedAt,
	}
}

func toOrdersResponse(orders []domain.OrderConfirmation) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	return result
}

func toCheckoutStatusResponse(status *usecase.CheckoutStatus) CheckoutStatusResponse {
	resp := CheckoutStatusResponse{
		AttemptID: status.AttemptID,
		State:     string(status.State),
	}

	if status.Confirmation != nil {
		order := toOrderResponse(*status.Confirmation)
		resp.Order = &order
	}

	if status.Err != nil {
		resp.Error = &CheckoutErrorResponse{Detail: status.Err.Error()}
		var subErr *usecase.SubmissionError
		if errors.As(status.Err, &subErr) {
			resp.Error.Kind = string(subErr.Kind)
			resp.Error.Detail = subErr.Detail
		}
	}

	return resp
}
