package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/google/uuid"
)

// CATALOG

// ProductFilter — фильтр каталога. Пустая категория или "all" означают отсутствие фильтра.
type ProductFilter struct {
	Category   string
	SearchText string
}

// Normalize приводит фильтр к каноническому виду, чтобы одинаковые запросы попадали в один ключ кэша.
func (f ProductFilter) Normalize() ProductFilter {
	category := strings.TrimSpace(f.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	return ProductFilter{
		Category:   category,
		SearchText: strings.TrimSpace(f.SearchText),
	}
}

// CatalogPage содержит товары по фильтру и все категории, как на главной странице магазина.
type CatalogPage struct {
	Products   []domain.Product
	Categories []domain.Category
}

// CART

// CartView — корзина вместе с пересчитанным итогом.
type CartView struct {
	SessionID string
	Cart      domain.Cart
	Summary   domain.PriceSummary
	ItemCount int
}

// SESSION

type LoginReq struct {
	Email    string
	Password string
}

// LoginRes — ответ внешнего сервиса авторизации.
type LoginRes struct {
	Token     string
	Identity  domain.Identity
	ExpiresAt *time.Time
}

// CHECKOUT

// CheckoutState — состояние попытки оформления заказа.
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSucceeded  CheckoutState = "succeeded"
	CheckoutFailed     CheckoutState = "failed"
)

// CheckoutStatus — снимок текущей попытки для вызывающего кода.
type CheckoutStatus struct {
	AttemptID    string
	State        CheckoutState
	Confirmation *domain.OrderConfirmation
	Err          error
}

// SubmissionKind классифицирует отказ внешнего сервиса заказов.
type SubmissionKind string

const (
	SubmissionUnauthenticated SubmissionKind = "unauthenticated"
	SubmissionValidation      SubmissionKind = "validation"
	SubmissionUnavailable     SubmissionKind = "unavailable"
)

// SubmissionError — неуспешная отправка заказа. errors.Is(err, e.ErrSubmissionFailed) == true.
type SubmissionError struct {
	Kind   SubmissionKind
	Detail string
	Err    error
}

func (s *SubmissionError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.ErrSubmissionFailed.Error(), s.Kind, s.Detail)
}

func (s *SubmissionError) Unwrap() []error {
	if s.Err == nil {
		return []error{e.ErrSubmissionFailed}
	}
	return []error{e.ErrSubmissionFailed, s.Err}
}

// CheckoutEventType — тип события журнала оформления.
type CheckoutEventType string

const (
	CheckoutSucceededEvent CheckoutEventType = "checkout.succeeded"
	CheckoutFailedEvent    CheckoutEventType = "checkout.failed"
)

// CheckoutEvent — исход попытки оформления для журнала и топика.
type CheckoutEvent struct {
	EventID    string
	Type       CheckoutEventType
	AttemptID  string
	SessionID  string
	UserID     string
	OrderID    string
	Items      []domain.OrderItem
	Summary    domain.PriceSummary
	Error      string
	OccurredAt time.Time
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

// OutboxEvent — запись transactional outbox.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID string // ключ сообщения в топике (идентификатор сессии)
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewCartView(sessionID string, cart domain.Cart, summary domain.PriceSummary) *CartView {
	return &CartView{
		SessionID: sessionID,
		Cart:      cart,
		Summary:   summary,
		ItemCount: cart.ItemCount(),
	}
}

func NewLoginReq(email, password string) *LoginReq {
	return &LoginReq{
		Email:    email,
		Password: password,
	}
}

func NewCheckoutEvent(eventType CheckoutEventType, attemptID, sessionID string, occurredAt time.Time) *CheckoutEvent {
	return &CheckoutEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		AttemptID:  attemptID,
		SessionID:  sessionID,
		OccurredAt: occurredAt,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, aggregateID string, payload []byte, createdAt time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   createdAt,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}
