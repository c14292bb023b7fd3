package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/cfg"
	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/repository/redis/converter"
	"github.com/DRSN-tech/grocery-cart/pkg/clients"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CartRepo хранит корзины и сессии в Redis, по одному ключу на сессию.
// SET целиком, последняя запись побеждает.
type CartRepo struct {
	client      *clients.RedisClient
	conv        converter.CartConverter
	sessionConv converter.SessionConverter
	cfg         *cfg.RedisCfg
}

func NewCartRepo(client *clients.RedisClient, cfg *cfg.RedisCfg) *CartRepo {
	return &CartRepo{
		client: client,
		cfg:    cfg,
	}
}

func (c *CartRepo) ReadCart(ctx context.Context, sessionID string) (domain.Cart, bool, error) {
	data, err := c.client.Client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return domain.Cart{}, false, nil
		}
		return domain.Cart{}, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.CartRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return domain.Cart{}, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToDomain(&model), true, nil
}

func (c *CartRepo) WriteCart(ctx context.Context, sessionID string, cart domain.Cart) error {
	data, err := json.Marshal(c.conv.ToRedisModel(sessionID, cart))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, cartKey(sessionID), data, c.cfg.CartTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) ReadSession(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	data, err := c.client.Client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.SessionRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return domain.Session{}, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.sessionConv.ToDomain(&model), true, nil
}

// WriteSession хранит сессию не дольше срока действия токена.
func (c *CartRepo) WriteSession(ctx context.Context, sessionID string, session domain.Session) error {
	data, err := json.Marshal(c.sessionConv.ToRedisModel(session))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	ttl := c.cfg.CartTTL
	if session.ExpiresAt != nil {
		if untilExpiry := time.Until(*session.ExpiresAt); ttl == 0 || untilExpiry < ttl {
			ttl = untilExpiry
		}
		if ttl <= 0 {
			return c.DeleteSession(ctx, sessionID)
		}
	}

	if err := c.client.Client.Set(ctx, sessionKey(sessionID), data, ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.client.Client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
