package commerce

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// Модели JSON внешнего бэкенда.

type productDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock"`
}

type categoryDTO struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type loginReqDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginResDTO struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        userDTO `json:"user"`
}

type registerReqDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type orderItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderReqDTO struct {
	Items           []orderItemDTO `json:"items"`
	DeliveryAddress string         `json:"delivery_address"`
}

type orderDTO struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ServiceFee        decimal.Decimal `json:"service_fee"`
	TransportationFee decimal.Decimal `json:"transportation_fee"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	CreatedAt         backendTime     `json:"created_at"`
	DeliveryAddress   string          `json:"delivery_address"`
}

// errorDTO — тело ошибки. detail бывает строкой или списком ошибок валидации.
type errorDTO struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItemDTO struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// backendTime принимает время с зоной и без нее (бэкенд отдает UTC без суффикса).
type backendTime struct {
	time.Time
}

var backendTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *backendTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == "" {
		return nil
	}

	var lastErr error
	for _, layout := range backendTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}

	return lastErr
}

func (d *errorDTO) message() string {
	if len(d.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(d.Detail, &text); err == nil {
		return text
	}

	var items []validationItemDTO
	if err := json.Unmarshal(d.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			msgs = append(msgs, item.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(d.Detail)
}

func (p productDTO) toDomain() domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
	}
}

func (u userDTO) toDomain() domain.Identity {
	return domain.Identity{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Address:  u.Address,
		Phone:    u.Phone,
		IsAdmin:  u.IsAdmin,
	}
}

func (o orderDTO) toDomain() domain.OrderConfirmation {
	return domain.OrderConfirmation{
		OrderID:           o.ID,
		UserID:            o.UserID,
		Status:            o.Status,
		Subtotal:          o.Subtotal,
		ServiceFee:        o.ServiceFee,
		TransportationFee: o.TransportationFee,
		Total:             o.Total,
		DeliveryAddress:   o.DeliveryAddress,
		CreatedAt:         o.CreatedAt.Time,
	}
}

func newOrderReqDTO(req *domain.OrderRequest) orderReqDTO {
	items := make([]orderItemDTO, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderItemDTO{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return orderReqDTO{
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
	}
}
