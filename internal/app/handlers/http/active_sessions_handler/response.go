package active_sessions_handler

import "time"

// ActiveSession сессия пользователя бота в ответе
type ActiveSession struct {
	TelegramID       int64      `json:"telegram_id"`
	QuizID           string     `json:"quiz_id"`
	SessionID        string     `json:"session_id"`
	State            string     `json:"state"`
	Status           string     `json:"status"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Answered         int        `json:"answered"`
	Total            int        `json:"total"`
	Warning          string     `json:"warning,omitempty"`
}

// ActiveSessionsResponse ответ GET /sessions/active
type ActiveSessionsResponse struct {
	TotalActiveUsers int             `json:"total_active_users"`
	ActiveSessions   []ActiveSession `json:"active_sessions"`
}
