package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineModel: элемент JSONB-массива lines таблицы carts.
type CartLineModel struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
}

// CartModel представляет запись таблицы carts в PostgreSQL.
type CartModel struct {
	SessionID string          `db:"session_id"`
	Lines     []CartLineModel `db:"lines"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// SessionModel представляет запись таблицы shopper_sessions в PostgreSQL.
type SessionModel struct {
	SessionID string     `db:"session_id"`
	Token     string     `db:"token"`
	UserID    string     `db:"user_id"`
	Email     string     `db:"email"`
	FullName  string     `db:"full_name"`
	Address   string     `db:"address"`
	Phone     string     `db:"phone"`
	IsAdmin   bool       `db:"is_admin"`
	ExpiresAt *time.Time `db:"expires_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
