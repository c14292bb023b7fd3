package commerce

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/golang-jwt/jwt/v5"
)

// Login вызывает POST /api/login. Срок действия берется из claim exp токена без проверки подписи:
// подпись проверяет бэкенд, здесь нужен только момент истечения.
func (c *Client) Login(ctx context.Context, req *usecase.LoginReq) (*usecase.LoginRes, error) {
	const op = "Client.Login"

	var dto loginResDTO
	err := c.postJSON(ctx, "/api/login", "", loginReqDTO{Email: req.Email, Password: req.Password}, &dto)
	if err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if dto.AccessToken == "" {
		return nil, e.Wrap(op, &APIError{Status: http.StatusOK, Message: "empty access token", Err: e.ErrUnavailable})
	}

	return &usecase.LoginRes{
		Token:     dto.AccessToken,
		Identity:  dto.User.toDomain(),
		ExpiresAt: tokenExpiry(dto.AccessToken),
	}, nil
}

// Register вызывает POST /api/register. Повторный email отклоняет бэкенд (400).
func (c *Client) Register(ctx context.Context, profile *domain.Profile) error {
	const op = "Client.Register"

	err := c.postJSON(ctx, "/api/register", "", registerReqDTO{
		Email:    profile.Email,
		Password: profile.Password,
		FullName: profile.FullName,
		Address:  profile.Address,
		Phone:    profile.Phone,
	}, nil)
	if err != nil {
		if errors.Is(err, e.ErrUnavailable) {
			return e.Wrap(op, err)
		}
		return e.Wrap(op, &APIError{Status: statusOf(err), Message: detailOf(err), Err: e.ErrValidation})
	}

	return nil
}

// tokenExpiry возвращает exp токена или nil, если его нет или токен не JWT.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	t := exp.Time
	return &t
}

func detailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
