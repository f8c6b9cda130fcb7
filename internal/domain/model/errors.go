package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized токен отсутствует, истёк или отклонён сервером (401)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidSubmission тело отправки не прошло локальную проверку
	ErrInvalidSubmission = errors.New("invalid submission")
)

// ConflictCode машинно-читаемый код ответа 409
type ConflictCode int

const (
	ConflictUnknown ConflictCode = iota
	ConflictQuizAlreadyTaken
	ConflictActiveSessionExists
	ConflictSessionExpired
	ConflictSessionNotActive
)

var conflictCodes = map[string]ConflictCode{
	"QUIZ_ALREADY_TAKEN":    ConflictQuizAlreadyTaken,
	"ACTIVE_SESSION_EXISTS": ConflictActiveSessionExists,
	"SESSION_EXPIRED":       ConflictSessionExpired,
	"SESSION_NOT_ACTIVE":    ConflictSessionNotActive,
}

// ParseConflictCode переводит строковый код сервера в ConflictCode
func ParseConflictCode(s string) ConflictCode {
	if code, ok := conflictCodes[s]; ok {
		return code
	}
	return ConflictUnknown
}

func (c ConflictCode) String() string {
	for s, code := range conflictCodes {
		if code == c {
			return s
		}
	}
	return "UNKNOWN"
}

// ConflictError ответ 409 с кодом конфликта
type ConflictError struct {
	Code      ConflictCode
	AttemptID string
	SessionID string
	QuizID    string
	Message   string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("conflict %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("conflict %s", e.Code)
}

// APIError любой другой неуспешный ответ платформы
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform responded with status %d", e.Status)
	}
	return fmt.Sprintf("platform responded with status %d: %s", e.Status, e.Message)
}

// AsConflict достаёт ConflictError из цепочки ошибок
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
