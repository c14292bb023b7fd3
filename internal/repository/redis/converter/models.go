package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductRedisModel struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
}

type CategoryRedisModel struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CartLineRedisModel struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
}

type CartRedisModel struct {
	SessionID string               `json:"session_id"`
	Lines     []CartLineRedisModel `json:"lines"`
}

type SessionRedisModel struct {
	Token     string     `json:"token"`
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Address   string     `json:"address"`
	Phone     string     `json:"phone"`
	IsAdmin   bool       `json:"is_admin"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
