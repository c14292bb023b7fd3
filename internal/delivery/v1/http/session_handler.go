package http

import (
	"net/http"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

type SessionHandler struct {
	sessionUsecase usecase.SessionUC
	logger         logger.Logger
}

func NewSessionHandler(sessionUsecase usecase.SessionUC, logger logger.Logger) *SessionHandler {
	return &SessionHandler{sessionUsecase: sessionUsecase, logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// current
//
//	@Summary	Текущая сессия покупателя
//	@Tags		session
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success	200				{object}	SessionResponse
//	@Router		/session [get]
func (s *SessionHandler) current(w http.ResponseWriter, _ *http.Request, sess *usecase.ShopperSession) {
	session, _ := s.sessionUsecase.Current(sess)
	WriteSuccess(w, http.StatusOK, toSessionResponse(sess.ID, session))
}

// login
//
//	@Summary		Вход
//	@Description	Проверяет учетные данные во внешнем сервисе и привязывает покупателя к сессии
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string			false	"Идентификатор сессии"
//	@Param			body			body		LoginRequest	true	"Учетные данные"
//	@Success		200				{object}	SessionResponse
//	@Failure		400				{object}	ErrorResponse	"Не заполнены поля"
//	@Failure		401				{object}	ErrorResponse	"Неверный email или пароль"
//	@Failure		502				{object}	ErrorResponse	"Бэкенд недоступен"
//	@Router			/session/login [post]
func (s *SessionHandler) login(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := s.sessionUsecase.Login(r.Context(), sess, usecase.NewLoginReq(req.Email, req.Password))
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSessionResponse(sess.ID, session))
}

// register
//
//	@Summary	Регистрация и вход
//	@Tags		session
//	@Accept		json
//	@Produce	json
//	@Param		X-Session-ID	header		string			false	"Идентификатор сессии"
//	@Param		body			body		RegisterRequest	true	"Профиль"
//	@Success	201				{object}	SessionResponse
//	@Failure	400				{object}	ErrorResponse	"Ошибка валидации"
//	@Router		/session/register [post]
func (s *SessionHandler) register(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := s.sessionUsecase.Register(r.Context(), sess, &domain.Profile{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toSessionResponse(sess.ID, session))
}

// logout
//
//	@Summary	Выход
//	@Tags		session
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"Идентификатор сессии"
//	@Success	200				{object}	SessionResponse
//	@Router		/session/logout [post]
func (s *SessionHandler) logout(w http.ResponseWriter, r *http.Request, sess *usecase.ShopperSession) {
	if err := s.sessionUsecase.Logout(r.Context(), sess); err != nil {
		// Личность уже снята в памяти
		s.logger.Warnf("%s", err.Error())
	}

	WriteSuccess(w, http.StatusOK, toSessionResponse(sess.ID, nil))
}
