package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// CheckoutJournal записывает исходы оформления в transactional outbox.
// Дальше события уходят в Kafka через outbox worker.
type CheckoutJournal struct {
	dbPool     transaction.Transactional
	outboxRepo OutboxRepository
	encoder    EventEncoder
	now        func() time.Time
}

func NewCheckoutJournal(dbPool transaction.Transactional, outboxRepo OutboxRepository, encoder EventEncoder) *CheckoutJournal {
	return &CheckoutJournal{
		dbPool:     dbPool,
		outboxRepo: outboxRepo,
		encoder:    encoder,
		now:        time.Now,
	}
}

func (j *CheckoutJournal) RecordCheckout(ctx context.Context, event *CheckoutEvent) (err error) {
	const op = "CheckoutJournal.RecordCheckout"

	payload, err := j.encoder.EncodeCheckoutEvent(event)
	if err != nil {
		return e.Wrap(op, err)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, j.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()
	ctx = tr.WithTx(ctx, tx.Transaction())

	outboxEvent := NewOutboxEvent(event.EventID, OutboxEventType(event.Type), event.SessionID, payload, j.now())
	if _, err = j.outboxRepo.Create(ctx, outboxEvent); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
