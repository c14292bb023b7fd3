package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// SessionRepo хранит токен и профиль покупателя в PostgreSQL.
type SessionRepo struct {
	pool *pgxpool.Pool
	conv converter.SessionConverter
}

func NewSessionRepo(pool *pgxpool.Pool, conv converter.SessionConverter) *SessionRepo {
	return &SessionRepo{
		pool: pool,
		conv: conv,
	}
}

func (s *SessionRepo) ReadSession(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	query := `
		SELECT session_id, token, user_id, email, full_name, address, phone, is_admin, expires_at, updated_at
		FROM shopper_sessions
		WHERE session_id = $1
	`

	var model converter.SessionModel
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(
		&model.SessionID, &model.Token, &model.UserID, &model.Email, &model.FullName,
		&model.Address, &model.Phone, &model.IsAdmin, &model.ExpiresAt, &model.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(&model), true, nil
}

func (s *SessionRepo) WriteSession(ctx context.Context, sessionID string, session domain.Session) error {
	model := s.conv.ToModel(sessionID, session)

	query := `
		INSERT INTO shopper_sessions (
			session_id, token, user_id, email, full_name, address, phone, is_admin, expires_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			is_admin = EXCLUDED.is_admin,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW();
	`

	if _, err := s.pool.Exec(ctx, query,
		model.SessionID,
		model.Token,
		model.UserID,
		model.Email,
		model.FullName,
		model.Address,
		model.Phone,
		model.IsAdmin,
		model.ExpiresAt,
	); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (s *SessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM shopper_sessions WHERE session_id = $1`, sessionID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
