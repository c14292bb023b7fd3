package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки корзины
	ErrPersistenceFailed = fmt.Errorf("cart persistence failed")

	// Ошибки оформления заказа
	ErrUnauthenticated    = fmt.Errorf("unauthenticated")
	ErrEmptyCart          = fmt.Errorf("cart is empty")
	ErrSubmissionFailed   = fmt.Errorf("order submission failed")
	ErrCheckoutInProgress = fmt.Errorf("checkout already in progress")
	ErrCheckoutNotFailed  = fmt.Errorf("checkout is not in failed state")

	// Ошибки внешнего сервиса
	ErrInvalidCredentials = fmt.Errorf("incorrect email or password")
	ErrValidation         = fmt.Errorf("validation error")
	ErrUnavailable        = fmt.Errorf("commerce backend unavailable")
	ErrProductNotFound    = fmt.Errorf("product not found")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")
	ErrInvalidQuantity  = fmt.Errorf("quantity must be an integer")
	ErrMissingFields    = fmt.Errorf("missing required fields")
	ErrInvalidSessionID = fmt.Errorf("invalid session id")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
