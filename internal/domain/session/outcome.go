package session

import (
	"context"
	"errors"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

var (
	ErrSessionInProgress = errors.New("quiz session already in progress")
	ErrSubmitInProgress  = errors.New("submission already in progress")
	ErrNotActive         = errors.New("no active quiz session")
	ErrClosed            = errors.New("session controller is closed")
	ErrEmptyQuizID       = errors.New("quiz id is required")
)

// Backend серверная часть протокола сессий
type Backend interface {
	StartSession(ctx context.Context, quizID string) (*model.Session, error)
	Heartbeat(ctx context.Context, sessionID string) (*model.HeartbeatResponse, error)
	AbandonSession(ctx context.Context, sessionID string) error
	ActiveSession(ctx context.Context) (*model.ActiveSession, error)
	QuizStatus(ctx context.Context, quizID string) (*model.QuizStatus, error)
	Submit(ctx context.Context, quizID string, submission model.Submission) (*model.SubmissionResult, error)
}

// QuizProvider отдаёт содержимое викторины
type QuizProvider interface {
	GetQuiz(ctx context.Context, quizID string) (*model.Quiz, error)
}

// OutcomeKind чем закончился старт или возобновление
type OutcomeKind int

const (
	OutcomeStarted OutcomeKind = iota
	OutcomeResumed
	OutcomeAlreadyTaken
	OutcomeBusyElsewhere
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeStarted:
		return "started"
	case OutcomeResumed:
		return "resumed"
	case OutcomeAlreadyTaken:
		return "already_taken"
	case OutcomeBusyElsewhere:
		return "busy_elsewhere"
	default:
		return "unknown"
	}
}

// Outcome результат Start/Resume.
// Other заполнен для OutcomeBusyElsewhere, AttemptID для OutcomeAlreadyTaken.
type Outcome struct {
	Kind      OutcomeKind
	Session   model.Session
	AttemptID string
	Other     model.ActiveSession
}

// Snapshot согласованный срез состояния контроллера
type Snapshot struct {
	State       State
	QuizID      string
	SessionID   string
	Quiz        *model.Quiz
	ExpiresAt   time.Time
	Remaining   time.Duration
	HasDeadline bool
	Answered    int
	Total       int
	Selected    map[string]string
	Warning     string
	TabWarning  bool
	Result      *model.SubmissionResult
	AttemptID   string

	// HoldsSession сессия на сервере ещё удерживается, в том числе после
	// локального истечения, которое сервер не подтвердил
	HoldsSession bool
}

// Submitting отправка ответов в процессе
func (s Snapshot) Submitting() bool {
	return s.State == StateSubmitting
}
