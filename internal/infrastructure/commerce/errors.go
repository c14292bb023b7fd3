package commerce

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DRSN-tech/grocery-cart/pkg/e"
)

// APIError — неуспешный ответ внешнего бэкенда или сбой транспорта.
// Status == 0 означает, что ответ не получен.
type APIError struct {
	Status  int
	Message string
	Err     error // одна из ошибок e.ErrUnauthenticated, e.ErrValidation, e.ErrUnavailable и т.д.
}

func (a *APIError) Error() string {
	if a.Status == 0 {
		return fmt.Sprintf("commerce backend: %v: %s", a.Err, a.Message)
	}
	return fmt.Sprintf("commerce backend: status %d: %v: %s", a.Status, a.Err, a.Message)
}

func (a *APIError) Unwrap() error {
	return a.Err
}

// Detail возвращает сообщение бэкенда для показа покупателю.
func (a *APIError) Detail() string {
	return a.Message
}

// classifyStatus сопоставляет HTTP-статус бэкенда с ошибкой из pkg/e.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return e.ErrUnauthenticated
	case status == http.StatusNotFound:
		return e.ErrProductNotFound
	case status >= 400 && status < 500:
		return e.ErrValidation
	default:
		return e.ErrUnavailable
	}
}

func retryable(err error) bool {
	return errors.Is(err, e.ErrUnavailable)
}
