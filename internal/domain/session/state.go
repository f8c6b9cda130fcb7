package session

import "github.com/IT-Nick/quizbot/internal/domain/model"

// State состояние контроллера сессии
type State int

const (
	StateIdle State = iota
	StateStarting
	StateActive
	StateSubmitting
	StateFinished
	StateExpired
	StateBlocked
	StateAbandoning
	StateAbandoned
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateStarting:   "starting",
	StateActive:     "active",
	StateSubmitting: "submitting",
	StateFinished:   "finished",
	StateExpired:    "expired",
	StateBlocked:    "blocked",
	StateAbandoning: "abandoning",
	StateAbandoned:  "abandoned",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Live сессия удерживается и таймеры должны работать
func (s State) Live() bool {
	return s == StateActive || s == StateSubmitting
}

// SessionStatus статус серверной сессии, каким его видит контроллер
func (s State) SessionStatus() string {
	switch s {
	case StateActive, StateSubmitting:
		return model.SessionActive
	case StateExpired:
		return model.SessionExpired
	case StateFinished:
		return model.SessionFinished
	case StateAbandoning, StateAbandoned:
		return model.SessionAbandoned
	default:
		return model.SessionNotActive
	}
}

// RouteKind куда представление должно увести пользователя
type RouteKind int

const (
	RouteDashboard RouteKind = iota
	RouteAttempt
	RouteQuiz
)

// Route навигация, запрошенная контроллером
type Route struct {
	Kind      RouteKind
	AttemptID string
	QuizID    string
	SessionID string
	Message   string
}
