package api

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"` // username пользователя
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль (минимум 6 символов)
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль
}

// UserInfo представляет публичные данные пользователя в ответах API
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse представляет ответ на успешную регистрацию или вход
type AuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"` // bearer токен, срок действия 7 дней
	User    UserInfo `json:"user"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"` // описание ошибки, без внутренних деталей
}
