package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/cfg"
	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
)

const receiptContentType = "application/json"

// ReceiptRepo архивирует чеки заказов в MinIO.
type ReceiptRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewReceiptRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ReceiptRepo {
	return &ReceiptRepo{
		mc:  mc,
		cfg: cfg,
	}
}

type receiptLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type receiptDocument struct {
	OrderID           string          `json:"order_id"`
	Status            string          `json:"status"`
	UserID            string          `json:"user_id"`
	SessionID         string          `json:"session_id"`
	DeliveryAddress   string          `json:"delivery_address"`
	Lines             []receiptLine   `json:"lines"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ServiceFee        decimal.Decimal `json:"service_fee"`
	TransportationFee decimal.Decimal `json:"transportation_fee"`
	Total             decimal.Decimal `json:"total"`
	BackendTotal      decimal.Decimal `json:"backend_total"`
	OrderedAt         time.Time       `json:"ordered_at"`
	IssuedAt          time.Time       `json:"issued_at"`
}

// Upload загружает чек в MinIO и возвращает ключ объекта.
func (r *ReceiptRepo) Upload(ctx context.Context, receipt *domain.Receipt) (string, error) {
	data, err := json.Marshal(toReceiptDocument(receipt))
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	info, err := r.mc.PutObject(ctx, r.cfg.BucketName, ReceiptKey(receipt), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: receiptContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// ReceiptKey строит ключ receipts/<год>/<месяц>/<день>/<order_id>-<uuid>.json
func ReceiptKey(receipt *domain.Receipt) string {
	issued := receipt.IssuedAt.UTC()
	orderID := receipt.Confirmation.OrderID
	if orderID == "" {
		orderID = "unknown"
	}

	return fmt.Sprintf("receipts/%04d/%02d/%02d/%s-%s.json",
		issued.Year(), issued.Month(), issued.Day(), orderID, uuid.NewString())
}

func toReceiptDocument(receipt *domain.Receipt) receiptDocument {
	lines := make([]receiptLine, 0, len(receipt.Lines))
	for _, l := range receipt.Lines {
		lines = append(lines, receiptLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		})
	}

	return receiptDocument{
		OrderID:           receipt.Confirmation.OrderID,
		Status:            receipt.Confirmation.Status,
		UserID:            receipt.IdentityID,
		SessionID:         receipt.SessionID,
		DeliveryAddress:   receipt.Confirmation.DeliveryAddress,
		Lines:             lines,
		Subtotal:          receipt.Summary.Subtotal,
		ServiceFee:        receipt.Summary.ServiceFee,
		TransportationFee: receipt.Summary.TransportationFee,
		Total:             receipt.Summary.Total,
		BackendTotal:      receipt.Confirmation.Total,
		OrderedAt:         receipt.Confirmation.CreatedAt,
		IssuedAt:          receipt.IssuedAt,
	}
}
