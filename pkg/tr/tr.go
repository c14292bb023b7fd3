package tr

import (
	"context"

	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// WithTx кладет транзакцию в контекст. Принимает значение, которое возвращает
// Transaction() менеджера транзакций.
func WithTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}
