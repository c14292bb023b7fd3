package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/google/uuid"
)

// SessionRegistry держит в памяти активные сессии покупателей и восстанавливает их из хранилищ.
type SessionRegistry struct {
	mu           sync.Mutex
	sessions     map[string]*ShopperSession
	cartStore    CartStore
	sessionStore SessionStore
	logger       logger.Logger
	idleTTL      time.Duration
	storeTimeout time.Duration
	now          func() time.Time
}

func NewSessionRegistry(
	cartStore CartStore,
	sessionStore SessionStore,
	logger logger.Logger,
	idleTTL time.Duration,
	storeTimeout time.Duration,
) *SessionRegistry {
	return &SessionRegistry{
		sessions:     make(map[string]*ShopperSession),
		cartStore:    cartStore,
		sessionStore: sessionStore,
		logger:       logger,
		idleTTL:      idleTTL,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (r *SessionRegistry) WithClock(now func() time.Time) *SessionRegistry {
	r.now = now
	return r
}

// Open возвращает сессию по идентификатору. Пустой идентификатор создает новую пустую сессию,
// для неизвестного корзина и личность восстанавливаются из хранилищ.
func (r *SessionRegistry) Open(ctx context.Context, sessionID string) (*ShopperSession, error) {
	const op = "SessionRegistry.Open"

	if sessionID == "" {
		return r.create(uuid.NewString(), domain.Cart{}, nil), nil
	}

	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidSessionID)
	}

	if sess, ok := r.lookup(sessionID); ok {
		return sess, nil
	}

	cart, session, err := r.restore(ctx, sessionID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return r.create(sessionID, cart, session), nil
}

// Len возвращает число сессий в памяти.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// EvictIdle выгружает из памяти сессии, неактивные дольше idleTTL.
// Сессия с незаписанной корзиной сначала сбрасывается в хранилище и остается, если запись снова не удалась.
func (r *SessionRegistry) EvictIdle(ctx context.Context) int {
	if r.idleTTL <= 0 {
		return 0
	}

	deadline := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	candidates := make([]*ShopperSession, 0)
	for _, sess := range r.sessions {
		if sess.idleSince().Before(deadline) && !sess.submitting() {
			candidates = append(candidates, sess)
		}
	}
	r.mu.Unlock()

	evicted := 0
	for _, sess := range candidates {
		if err := sess.Cart.Flush(ctx); err != nil {
			r.logger.Warnf("session %s kept in memory, flush failed: %v", sess.ID, err)
			continue
		}

		r.mu.Lock()
		if current, ok := r.sessions[sess.ID]; ok && current == sess && sess.idleSince().Before(deadline) {
			delete(r.sessions, sess.ID)
			evicted++
		}
		r.mu.Unlock()
	}

	if evicted > 0 {
		r.logger.Debugf("evicted %d idle sessions", evicted)
	}

	return evicted
}

// RunJanitor периодически вызывает EvictIdle до отмены контекста.
func (r *SessionRegistry) RunJanitor(ctx context.Context, period time.Duration) {
	if period <= 0 {
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle(ctx)
		}
	}
}

// FlushAll пытается записать все незаписанные корзины, используется при остановке.
func (r *SessionRegistry) FlushAll(ctx context.Context) error {
	r.mu.Lock()
	sessions := make([]*ShopperSession, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.mu.Unlock()

	var firstErr error
	for _, sess := range sessions {
		if err := sess.Cart.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (r *SessionRegistry) lookup(sessionID string) (*ShopperSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if ok {
		sess.touch(r.now())
	}

	return sess, ok
}

// create регистрирует сессию. Если другой запрос успел восстановить ту же сессию, возвращается она.
func (r *SessionRegistry) create(sessionID string, cart domain.Cart, session *domain.Session) *ShopperSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[sessionID]; ok {
		existing.touch(r.now())
		return existing
	}

	holder := NewIdentityHolder(r.now)
	if session != nil {
		holder.Set(*session)
	}

	engine := NewCartEngine(sessionID, cart, r.cartStore, r.logger, r.storeTimeout)
	sess := newShopperSession(sessionID, engine, holder, r.now())
	r.sessions[sessionID] = sess

	return sess
}

// restore читает корзину и личность. Ошибка чтения корзины не маскируется пустой корзиной,
// иначе следующая мутация перезапишет сохраненное состояние.
func (r *SessionRegistry) restore(ctx context.Context, sessionID string) (domain.Cart, *domain.Session, error) {
	readCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	cart, _, err := r.cartStore.ReadCart(readCtx, sessionID)
	if err != nil {
		return domain.Cart{}, nil, err
	}

	session, found, err := r.sessionStore.ReadSession(readCtx, sessionID)
	if err != nil {
		r.logger.Warnf("session %s identity not restored: %v", sessionID, err)
		return cart, nil, nil
	}

	if !found {
		return cart, nil, nil
	}

	if session.Expired(r.now()) {
		if err := r.sessionStore.DeleteSession(readCtx, sessionID); err != nil {
			r.logger.Warnf("failed to delete expired session %s: %v", sessionID, err)
		}
		return cart, nil, nil
	}

	return cart, &session, nil
}
