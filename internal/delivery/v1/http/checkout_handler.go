package http

import (
	"errors"
	"net/http"

	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

type CheckoutHandler struct {
	checkoutUsecase usecase.CheckoutUC
	logger          logger.Logger
}

func NewCheckoutHandler(checkoutUsecase usecase.CheckoutUC, logger logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutUsecase: checkoutUsecase, logger: logger}
}

// submit
//
//	@Summary		Оформить заказ
//	@Description	Отправляет снимок корзины во внешний сервис заказов. Без входа и с пустой корзиной запрос не уходит
//	@Tags			checkout
//	@Produce		json
//	@Param			X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success		201				{object}	CheckoutStatusResponse
//	@Failure		401				{object}	ErrorResponse	"Требуется вход"
//	@Failure		409				{object}	ErrorResponse	"Оформление уже идет"
//	@Failure		422				{object}	ErrorResponse	"Пустая корзина или отказ сервиса заказов"
//	@Failure		502				{object}	ErrorResponse	"Сервис заказов недоступен"
//	@Router			/checkout [post]
func (c *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	status, err := c.checkoutUsecase.Submit(r.Context(), sess)
	if err != nil {
		c.logger.Warnf("%s", err.Error())

		// Отказ сервиса заказов возвращается вместе с состоянием попытки
		var subErr *usecase.SubmissionError
		if errors.As(err, &subErr) && status != nil {
			code, _ := ToHTTPResponse(err)
			WriteSuccess(w, code, toCheckoutStatusResponse(status))
			return
		}

		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCheckoutStatusResponse(status))
}

// status
//
//	@Summary	Состояние оформления
//	@Tags		checkout
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success	200				{object}	CheckoutStatusResponse
//	@Router		/checkout [get]
func (c *CheckoutHandler) status(w http.ResponseWriter, _ *http.Request, sess *usecase.ShopperSession) {
	WriteSuccess(w, http.StatusOK, toCheckoutStatusResponse(c.checkoutUsecase.Status(sess)))
}

// reset
//
//	@Summary	Сбросить неудачную попытку
//	@Tags		checkout
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success	200				{object}	CheckoutStatusResponse
//	@Failure	409				{object}	ErrorResponse	"Попытка не в состоянии failed"
//	@Router		/checkout/reset [post]
func (c *CheckoutHandler) reset(w http.ResponseWriter, _ *http.Request, sess *usecase.ShopperSession) {
	status, err := c.checkoutUsecase.Reset(sess)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCheckoutStatusResponse(status))
}

// orders
//
//	@Summary	История заказов
//	@Tags		checkout
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success	200				{array}		OrderResponse
//	@Failure	401				{object}	ErrorResponse	"Требуется вход"
//	@Router		/orders [get]
func (c *CheckoutHandler) orders(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	orders, err := c.checkoutUsecase.OrderHistory(r.Context(), sess)
	if err != nil {
		if !errors.Is(err, e.ErrUnauthenticated) {
			c.logger.Warnf("%s", err.Error())
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrdersResponse(orders))
}
