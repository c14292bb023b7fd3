package pgdb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CartRepo хранит корзины сессий в PostgreSQL. Последняя запись побеждает.
type CartRepo struct {
	pool *pgxpool.Pool
	conv converter.CartConverter
}

func NewCartRepo(pool *pgxpool.Pool, conv converter.CartConverter) *CartRepo {
	return &CartRepo{
		pool: pool,
		conv: conv,
	}
}

func (c *CartRepo) ReadCart(ctx context.Context, sessionID string) (domain.Cart, bool, error) {
	query := `
		SELECT session_id, lines, updated_at
		FROM carts
		WHERE session_id = $1
	`

	var (
		model converter.CartModel
		raw   []byte
	)
	err := c.pool.QueryRow(ctx, query, sessionID).Scan(&model.SessionID, &raw, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, false, nil
		}
		return domain.Cart{}, false, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := json.Unmarshal(raw, &model.Lines); err != nil {
		return domain.Cart{}, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), true, nil
}

// WriteCart записывает корзину целиком (upsert по session_id).
func (c *CartRepo) WriteCart(ctx context.Context, sessionID string, cart domain.Cart) error {
	model := c.conv.ToModel(sessionID, cart)

	lines, err := json.Marshal(model.Lines)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO carts (session_id, lines, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET
			lines = EXCLUDED.lines,
			updated_at = NOW();
	`

	if _, err := c.pool.Exec(ctx, query, model.SessionID, lines); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
