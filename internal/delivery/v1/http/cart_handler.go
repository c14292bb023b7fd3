package http

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
}

// UpdateQuantityRequest: quantity <= 0 удаляет позицию.
type UpdateQuantityRequest struct {
	Quantity json.Number `json:"quantity"`
}

// getCart
//
//	@Summary	Текущая корзина с итогом
//	@Tags		cart
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success	200				{object}	CartResponse
//	@Router		/cart [get]
func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	view, err := c.cartUsecase.GetCart(r.Context(), sess)
	c.writeCart(w, view, err)
}

// addToCart
//
//	@Summary		Добавить товар
//	@Description	Добавляет одну единицу товара. Повторное добавление увеличивает количество
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string				false	"Идентификатор сессии"
//	@Param			body			body		AddToCartRequest	true	"Товар"
//	@Success		200				{object}	CartResponse
//	@Failure		400				{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		404				{object}	ErrorResponse	"Товар не найден"
//	@Router			/cart/items [post]
func (c *CartHandler) addToCart(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	var req AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	if req.ProductID == "" {
		WriteError(w, e.ErrMissingFields)
		return
	}

	view, err := c.cartUsecase.AddToCart(r.Context(), sess, req.ProductID)
	c.writeCart(w, view, err)
}

// updateQuantity
//
//	@Summary	Изменить количество
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		X-Session-ID	header		string					false	"Идентификатор сессии"
//	@Param		productID		path		string					true	"ID товара"
//	@Param		body			body		UpdateQuantityRequest	true	"Количество"
//	@Success	200				{object}	CartResponse
//	@Failure	400				{object}	ErrorResponse	"Количество не целое"
//	@Router		/cart/items/{productID} [put]
func (c *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	quantity, err := parseQuantity(req.Quantity)
	if err != nil {
		c.logger.Warnf("%d %s: %q", http.StatusBadRequest, err.Error(), req.Quantity)
		WriteError(w, err)
		return
	}

	view, err := c.cartUsecase.UpdateQuantity(r.Context(), sess, chi.URLParam(r, "productID"), quantity)
	c.writeCart(w, view, err)
}

// removeFromCart
//
//	@Summary	Удалить позицию
//	@Tags		cart
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Param		productID		path		string	true	"ID товара"
//	@Success	200				{object}	CartResponse
//	@Router		/cart/items/{productID} [delete]
func (c *CartHandler) removeFromCart(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	view, err := c.cartUsecase.RemoveFromCart(r.Context(), sess, chi.URLParam(r, "productID"))
	c.writeCart(w, view, err)
}

// clearCart
//
//	@Summary	Очистить корзину
//	@Tags		cart
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success	200				{object}	CartResponse
//	@Router		/cart [delete]
func (c *CartHandler) clearCart(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	view, err := c.cartUsecase.ClearCart(r.Context(), sess)
	c.writeCart(w, view, err)
}

// writeCart: ошибка записи в хранилище не скрывает результат, корзина возвращается с persisted=false.
func (c *CartHandler) writeCart(w http.ResponseWriter, view *usecase.CartView, err error) {
	if err != nil {
		if errors.Is(err, e.ErrPersistenceFailed) && view != nil {
			c.logger.Warnf("%s", err.Error())
			WriteSuccess(w, http.StatusOK, toCartResponse(view, false))
			return
		}

		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view, true))
}

// maxQuantity ограничивает количество одной позиции, заданное через API.
const maxQuantity = 1_000_000

// parseQuantity принимает только целые числа. Отрицательные приводятся к 0 (удаление позиции),
// в том числе выходящие за int64.
func parseQuantity(n json.Number) (int, error) {
	if n == "" {
		return 0, e.ErrMissingFields
	}

	v, ok := new(big.Int).SetString(n.String(), 10)
	if !ok {
		return 0, e.Wrap(n.String(), e.ErrInvalidQuantity)
	}

	if v.Sign() < 0 {
		return 0, nil
	}
	if !v.IsInt64() || v.Int64() > maxQuantity {
		return 0, e.Wrap(n.String(), e.ErrInvalidQuantity)
	}

	return int(v.Int64()), nil
}
