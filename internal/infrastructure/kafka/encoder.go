package kafka

import (
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventEncoder сериализует события оформления в protobuf Struct.
// Деньги передаются строками, чтобы не терять точность на стороне потребителя.
type EventEncoder struct{}

func NewEventEncoder() *EventEncoder {
	return &EventEncoder{}
}

func (EventEncoder) EncodeCheckoutEvent(event *usecase.CheckoutEvent) ([]byte, error) {
	msg, err := structpb.NewStruct(checkoutEventFields(event))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}

// DecodeCheckoutEvent выполняет обратное преобразование для потребителей и тестов.
func DecodeCheckoutEvent(data []byte) (map[string]any, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return msg.AsMap(), nil
}

func checkoutEventFields(event *usecase.CheckoutEvent) map[string]any {
	items := make([]any, 0, len(event.Items))
	for _, item := range event.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		})
	}

	fields := map[string]any{
		"event_id":    event.EventID,
		"event_type":  string(event.Type),
		"attempt_id":  event.AttemptID,
		"session_id":  event.SessionID,
		"user_id":     event.UserID,
		"items":       items,
		"summary":     summaryFields(event.Summary),
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}

	if event.OrderID != "" {
		fields["order_id"] = event.OrderID
	}
	if event.Error != "" {
		fields["error"] = event.Error
	}

	return fields
}

func summaryFields(s domain.PriceSummary) map[string]any {
	return map[string]any{
		"subtotal":           s.Subtotal.String(),
		"service_fee":        s.ServiceFee.String(),
		"transportation_fee": s.TransportationFee.String(),
		"total":              s.Total.String(),
	}
}
