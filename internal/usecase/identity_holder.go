package usecase

import (
	"sync"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
)

// IdentityHolder хранит текущую авторизованную личность сессии.
type IdentityHolder struct {
	mu      sync.RWMutex
	session *domain.Session
	now     func() time.Time
}

func NewIdentityHolder(now func() time.Time) *IdentityHolder {
	if now == nil {
		now = time.Now
	}

	return &IdentityHolder{now: now}
}

func (h *IdentityHolder) Set(session domain.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.session = &session
}

func (h *IdentityHolder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.session = nil
}

// Get возвращает сессию, если она задана и токен не истек.
func (h *IdentityHolder) Get() (domain.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.session == nil || h.session.Expired(h.now()) {
		return domain.Session{}, false
	}

	return *h.session, true
}
