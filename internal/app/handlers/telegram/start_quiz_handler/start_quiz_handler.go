package start_quiz_handler

import (
	"context"
	"errors"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"gopkg.in/telebot.v4"
)

// StartQuizHandler запускает викторину по кнопке из списка
type StartQuizHandler struct {
	manager *sessions.Manager
}

func NewStartQuizHandler(manager *sessions.Manager) *StartQuizHandler {
	return &StartQuizHandler{manager: manager}
}

func (h *StartQuizHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager

	var quizID string
	if cb := c.Callback(); cb != nil {
		quizID = cb.Data
	} else {
		quizID = c.Message().Payload
	}

	ctrl, err := m.Controller(ctx, c.Sender())
	if err != nil {
		return m.Reply(c, err)
	}

	outcome, err := ctrl.Start(ctx, quizID)
	if errors.Is(err, session.ErrSessionInProgress) {
		_ = c.Respond()
		return c.Send(m.Messages.Text(ctx, msgService.WarningFinishOtherKey))
	}
	if err != nil {
		return m.Reply(c, err)
	}
	_ = c.Respond()
	return Present(ctx, c, m, ctrl, outcome)
}

// Present показывает пользователю результат старта или возобновления.
// Блокировку и занятость другой викториной уже показал Presenter контроллера.
func Present(ctx context.Context, c telebot.Context, m *sessions.Manager, ctrl *session.Controller, outcome session.Outcome) error {
	switch outcome.Kind {
	case session.OutcomeStarted, session.OutcomeResumed:
		snap := ctrl.Snapshot()
		title := ""
		if snap.Quiz != nil {
			title = snap.Quiz.Title
		}
		text := m.Messages.Text(ctx, msgService.QuizStartedKey, title, snap.Total)
		if outcome.Kind == session.OutcomeResumed {
			text = m.Messages.Text(ctx, msgService.QuizResumedKey, title, snap.Answered, snap.Total)
		}
		if err := c.Send(text); err != nil {
			return err
		}
		return m.SendQuestions(c, snap)
	}
	return nil
}

func (h *StartQuizHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
