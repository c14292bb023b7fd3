package http

import (
	"net/http"

	_ "github.com/DRSN-tech/grocery-cart/docs" // Импорт описания API
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// UseCases собирает зависимости обработчиков.
type UseCases struct {
	Sessions usecase.SessionResolver
	Catalog  usecase.CatalogUC
	Cart     usecase.CartUC
	Session  usecase.SessionUC
	Checkout usecase.CheckoutUC
}

func (r *Router) Init(uc UseCases, sessionHeader, swaggerURL string) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(swaggerURL), // ссылка на JSON
	))

	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerCatalogRoutes(v1, NewCatalogHandler(uc.Catalog, r.logger))

		v1.Group(func(shopper chi.Router) {
			shopper.Use(SessionMiddleware(uc.Sessions, sessionHeader, r.logger))

			registerCartRoutes(shopper, NewCartHandler(uc.Cart, r.logger))
			registerSessionRoutes(shopper, NewSessionHandler(uc.Session, r.logger))
			registerCheckoutRoutes(shopper, NewCheckoutHandler(uc.Checkout, r.logger))
		})
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Get("/catalog", h.browse)
	router.Get("/categories", h.listCategories)
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/{productID}", h.getProduct)
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Get("/", withSession(h.getCart))
		cr.Delete("/", withSession(h.clearCart))
		cr.Post("/items", withSession(h.addToCart))
		cr.Put("/items/{productID}", withSession(h.updateQuantity))
		cr.Delete("/items/{productID}", withSession(h.removeFromCart))
	})
}

func registerSessionRoutes(router chi.Router, h *SessionHandler) {
	router.Route("/session", func(sr chi.Router) {
		sr.Get("/", withSession(h.current))
		sr.Post("/login", withSession(h.login))
		sr.Post("/register", withSession(h.register))
		sr.Post("/logout", withSession(h.logout))
	})
}

func registerCheckoutRoutes(router chi.Router, h *CheckoutHandler) {
	router.Route("/checkout", func(cr chi.Router) {
		cr.Get("/", withSession(h.status))
		cr.Post("/", withSession(h.submit))
		cr.Post("/reset", withSession(h.reset))
	})
	router.Get("/orders", withSession(h.orders))
}
