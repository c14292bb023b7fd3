package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/jitter"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

const (
	archiveAttempts = 3
	archiveTimeout  = 30 * time.Second
	archiveBackoff  = time.Second
	archiveMaxWait  = 10 * time.Second
)

// ReceiptArchive загружает чеки в MinIO в фоне с повторами.
// Оформление заказа не ждет архив, при остановке приложения незавершенные загрузки дожидаются через Wait.
type ReceiptArchive struct {
	repo        usecase.ReceiptRepository
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	backoff     jitter.Backoff
}

func NewReceiptArchive(repo usecase.ReceiptRepository, logger logger.Logger, shutdownCtx context.Context) *ReceiptArchive {
	return &ReceiptArchive{
		repo:        repo,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		backoff:     jitter.NewBackoff(archiveBackoff, archiveMaxWait),
	}
}

// Archive ставит чек в очередь на загрузку.
func (a *ReceiptArchive) Archive(receipt *domain.Receipt) {
	a.wg.Add(1)
	go a.upload(receipt)
}

func (a *ReceiptArchive) upload(receipt *domain.Receipt) {
	defer a.wg.Done()
	const op = "ReceiptArchive.upload"

	ctx, cancel := context.WithTimeout(a.shutdownCtx, archiveTimeout)
	defer cancel()

	for attempt := 0; attempt < archiveAttempts; attempt++ {
		key, err := a.repo.Upload(ctx, receipt)
		if err == nil {
			a.logger.Debugf("%s: receipt archived, order=%s key=%s", op, receipt.Confirmation.OrderID, key)
			return
		}

		if attempt == archiveAttempts-1 {
			a.logger.Errorf(err, "%s: receipt for order %s not archived after %d attempts", op, receipt.Confirmation.OrderID, archiveAttempts)
			return
		}

		a.logger.Warnf("%s: upload failed, retrying: %v", op, err)

		if !a.backoff.Sleep(ctx, attempt) {
			a.logger.Warnf("%s: interrupted by shutdown, order=%s", op, receipt.Confirmation.OrderID)
			return
		}
	}
}

// Wait ожидает завершения фоновых загрузок с учётом таймаута завершения приложения.
func (a *ReceiptArchive) Wait(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("receipt archive timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
