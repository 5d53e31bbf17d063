package models

import "time"

// User представляет зарегистрированного пользователя
type User struct {
	ID           int64     `json:"id"`            // автоинкрементный ID
	Username     string    `json:"username"`      // уникальный username
	Email        string    `json:"email"`         // уникальный email
	PasswordHash string    `json:"-"`             // bcrypt хеш пароля, никогда не сериализуется
	CreatedAt    time.Time `json:"created_at"`    // время регистрации
}
