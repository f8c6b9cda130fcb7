package model

import "time"

// Статусы сессии прохождения викторины
const (
	SessionActive    = "active"
	SessionExpired   = "expired"
	SessionNotActive = "not-active"
	SessionFinished  = "finished"
	SessionAbandoned = "abandoned"
)

// Session серверная сессия прохождения викторины
type Session struct {
	SessionID string    `json:"sessionId"`
	QuizID    string    `json:"quizId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ActiveSession ответ на запрос активной сессии пользователя
type ActiveSession struct {
	HasActiveSession bool       `json:"hasActiveSession"`
	SessionID        string     `json:"sessionId,omitempty"`
	QuizID           string     `json:"quizId,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

// Matches проверяет, что активная сессия совпадает с переданной
func (a *ActiveSession) Matches(sessionID string) bool {
	return a != nil && a.HasActiveSession && a.SessionID == sessionID
}

// HeartbeatResponse ответ на продление сессии
type HeartbeatResponse struct {
	OK        bool       `json:"ok"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
