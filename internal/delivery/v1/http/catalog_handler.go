package http

import (
	"net/http"

	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

func filterFromQuery(r *http.Request) usecase.ProductFilter {
	q := r.URL.Query()
	return usecase.ProductFilter{
		Category:   q.Get("category"),
		SearchText: q.Get("search"),
	}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Товары каталога с фильтром по категории ("all" — без фильтра) и поиском по тексту
//	@Tags			catalog
//	@Produce		json
//	@Param			category	query		string	false	"Категория"
//	@Param			search		query		string	false	"Поиск по названию и описанию"
//	@Success		200			{array}		ProductResponse
//	@Failure		502			{object}	ErrorResponse	"Бэкенд недоступен"
//	@Router			/products [get]
func (c *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalogUsecase.ListProducts(r.Context(), filterFromQuery(r))
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductsResponse(products))
}

// getProduct
//
//	@Summary	Товар по идентификатору
//	@Tags		catalog
//	@Produce	json
//	@Param		productID	path		string	true	"ID товара"
//	@Success	200			{object}	ProductResponse
//	@Failure	404			{object}	ErrorResponse	"Товар не найден"
//	@Router		/products/{productID} [get]
func (c *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.catalogUsecase.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(*product))
}

// listCategories
//
//	@Summary	Категории с количеством товаров
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{array}	CategoryResponse
//	@Router		/categories [get]
func (c *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalogUsecase.ListCategories(r.Context())
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoriesResponse(categories))
}

// browse
//
//	@Summary	Товары и категории одним запросом
//	@Tags		catalog
//	@Produce	json
//	@Param		category	query		string	false	"Категория"
//	@Param		search		query		string	false	"Поиск"
//	@Success	200			{object}	CatalogResponse
//	@Router		/catalog [get]
func (c *CatalogHandler) browse(w http.ResponseWriter, r *http.Request) {
	page, err := c.catalogUsecase.Browse(r.Context(), filterFromQuery(r))
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CatalogResponse{
		Products:   toProductsResponse(page.Products),
		Categories: toCategoriesResponse(page.Categories),
	})
}
