package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// detailer реализуют ошибки внешнего бэкенда с сообщением для покупателя.
type detailer interface {
	Detail() string
}

// ToHTTPResponse сопоставляет ошибку с HTTP-статусом и сообщением.
// Ошибка отправки заказа проверяется первой: она оборачивает исходную ошибку бэкенда.
func ToHTTPResponse(err error) (int, string) {
	var subErr *usecase.SubmissionError
	if errors.As(err, &subErr) {
		switch subErr.Kind {
		case usecase.SubmissionUnauthenticated:
			return http.StatusUnauthorized, subErr.Error()
		case usecase.SubmissionValidation:
			return http.StatusUnprocessableEntity, subErr.Error()
		default:
			return http.StatusBadGateway, subErr.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrInvalidQuantity):
		return http.StatusBadRequest, e.ErrInvalidQuantity.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	case errors.Is(err, e.ErrInvalidSessionID):
		return http.StatusBadRequest, e.ErrInvalidSessionID.Error()
	case errors.Is(err, e.ErrInvalidCredentials):
		return http.StatusUnauthorized, e.ErrInvalidCredentials.Error()
	case errors.Is(err, e.ErrUnauthenticated):
		return http.StatusUnauthorized, e.ErrUnauthenticated.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrEmptyCart):
		return http.StatusUnprocessableEntity, e.ErrEmptyCart.Error()
	case errors.Is(err, e.ErrCheckoutInProgress):
		return http.StatusConflict, e.ErrCheckoutInProgress.Error()
	case errors.Is(err, e.ErrCheckoutNotFailed):
		return http.StatusConflict, e.ErrCheckoutNotFailed.Error()
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest, detailOr(err, e.ErrValidation.Error())
	case errors.Is(err, e.ErrUnavailable):
		return http.StatusBadGateway, e.ErrUnavailable.Error()
	case errors.Is(err, e.ErrPersistenceFailed):
		return http.StatusServiceUnavailable, e.ErrPersistenceFailed.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func detailOr(err error, fallback string) string {
	var d detailer
	if errors.As(err, &d) && d.Detail() != "" {
		return d.Detail()
	}
	return fallback
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	resp := NewErrorResponse(code, msg)

	var subErr *usecase.SubmissionError
	if errors.As(err, &subErr) {
		resp.Kind = string(subErr.Kind)
	}

	WriteSuccess(w, code, resp)
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса. Неизвестные поля допустимы, битый JSON дает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBody = 1 << 20

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}
