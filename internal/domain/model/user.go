package model

import "time"

// User пользователь бота, связанный с аккаунтом платформы
type User struct {
	ID                int       `json:"id"`
	TelegramID        int64     `json:"telegram_id"`
	TelegramUsername  string    `json:"telegram_username"`
	TelegramFirstName *string   `json:"telegram_first_name,omitempty"`
	PlatformToken     *string   `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Linked проверяет, привязан ли к пользователю токен платформы
func (u *User) Linked() bool {
	return u != nil && u.PlatformToken != nil && *u.PlatformToken != ""
}

// Profile профиль пользователя на платформе
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	TotalPoints int    `json:"totalPoints"`
}
