package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

// SessionUseCase управляет личностью покупателя в сессии.
type SessionUseCase struct {
	identity     IdentityService
	sessionStore SessionStore
	logger       logger.Logger
}

func NewSessionUC(identity IdentityService, sessionStore SessionStore, logger logger.Logger) *SessionUseCase {
	return &SessionUseCase{
		identity:     identity,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// Login проверяет учетные данные во внешнем сервисе и сохраняет токен в сессии.
func (s *SessionUseCase) Login(ctx context.Context, sess *ShopperSession, req *LoginReq) (*domain.Session, error) {
	const op = "SessionUseCase.Login"

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	res, err := s.identity.Login(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	session := domain.Session{
		Token:     res.Token,
		Identity:  res.Identity,
		ExpiresAt: res.ExpiresAt,
	}
	sess.Identity.Set(session)

	// Личность в памяти уже установлена, ошибка записи только логируется
	if err := s.sessionStore.WriteSession(ctx, sess.ID, session); err != nil {
		s.logger.Warnf("session %s not persisted: %v", sess.ID, e.Wrap(op, err))
	}

	return &session, nil
}

// Register создает пользователя и сразу выполняет вход.
func (s *SessionUseCase) Register(ctx context.Context, sess *ShopperSession, profile *domain.Profile) (*domain.Session, error) {
	const op = "SessionUseCase.Register"

	if strings.TrimSpace(profile.Email) == "" || profile.Password == "" || strings.TrimSpace(profile.FullName) == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	if err := s.identity.Register(ctx, profile); err != nil {
		return nil, e.Wrap(op, err)
	}

	session, err := s.Login(ctx, sess, NewLoginReq(profile.Email, profile.Password))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return session, nil
}

// Logout очищает личность. Корзина остается.
func (s *SessionUseCase) Logout(ctx context.Context, sess *ShopperSession) error {
	const op = "SessionUseCase.Logout"

	sess.Identity.Clear()

	if err := s.sessionStore.DeleteSession(ctx, sess.ID); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (s *SessionUseCase) Current(sess *ShopperSession) (*domain.Session, bool) {
	session, ok := sess.Identity.Get()
	if !ok {
		return nil, false
	}

	return &session, true
}
