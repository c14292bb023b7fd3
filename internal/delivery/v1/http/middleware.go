package http

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

type sessionCtxKey struct{}

var errNoSession = e.Wrap("session middleware not installed", e.ErrInternalServerError)

// SessionMiddleware открывает сессию покупателя по заголовку и возвращает ее идентификатор в том же заголовке.
// Без заголовка создается новая сессия.
func SessionMiddleware(resolver usecase.SessionResolver, header string, logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := resolver.Open(r.Context(), r.Header.Get(header))
			if err != nil {
				logger.Warnf("session open failed: %v", err)
				WriteError(w, err)
				return
			}

			w.Header().Set(header, sess.ID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey{}, sess)))
		})
	}
}

// SessionFromCtx возвращает сессию, открытую SessionMiddleware.
func SessionFromCtx(ctx context.Context) (*usecase.ShopperSession, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(*usecase.ShopperSession)
	return sess, ok
}

// withSession передает сессию из контекста обработчику.
func withSession(fn func(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromCtx(r.Context())
		if !ok {
			WriteError(w, errNoSession)
			return
		}
		fn(w, r, sess)
	}
}
