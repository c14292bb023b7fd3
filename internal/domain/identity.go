package domain

import "time"

// Identity — авторизованный покупатель.
type Identity struct {
	ID       string
	Email    string
	FullName string
	Address  string
	Phone    string
	IsAdmin  bool
}

// Session хранит токен внешнего бэкенда и профиль покупателя.
type Session struct {
	Token     string
	Identity  Identity
	ExpiresAt *time.Time // nil, если срок действия токена неизвестен
}

// Expired сообщает, истек ли токен к моменту now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Profile — данные для регистрации во внешнем сервисе.
type Profile struct {
	Email    string
	Password string
	FullName string
	Address  string
	Phone    string
}
