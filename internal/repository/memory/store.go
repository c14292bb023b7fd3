// Package memory хранит корзины и сессии в памяти процесса.
// Используется в тестах и при локальном запуске без Postgres и Redis.
package memory

import (
	"context"
	"sync"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	carts    map[string]domain.Cart
	sessions map[string]domain.Session
	writes   int
	failWith error
}

func NewStore() *Store {
	return &Store{
		carts:    make(map[string]domain.Cart),
		sessions: make(map[string]domain.Session),
	}
}

// FailWrites заставляет последующие записи возвращать err. nil отключает отказ.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failWith = err
}

// Writes возвращает число успешных записей корзин.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.writes
}

func (s *Store) ReadCart(ctx context.Context, sessionID string) (domain.Cart, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return domain.Cart{}, false, nil
	}

	return cart.Clone(), true, nil
}

func (s *Store) WriteCart(ctx context.Context, sessionID string, cart domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}

	s.carts[sessionID] = cart.Clone()
	s.writes++

	return nil
}

func (s *Store) ReadSession(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	return session, ok, nil
}

func (s *Store) WriteSession(ctx context.Context, sessionID string, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}

	s.sessions[sessionID] = session
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
