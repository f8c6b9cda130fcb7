package resume_handler

import (
	"context"
	"errors"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/start_quiz_handler"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"gopkg.in/telebot.v4"
)

// ResumeHandler продолжает сессию по кнопке "Продолжить": в данных id викторины
type ResumeHandler struct {
	manager *sessions.Manager
}

func NewResumeHandler(manager *sessions.Manager) *ResumeHandler {
	return &ResumeHandler{manager: manager}
}

func (h *ResumeHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager
	_ = c.Respond()

	quizID := ""
	if parts, ok := sessions.SplitData(c.Callback().Data, 1); ok {
		quizID = parts[0]
	}

	ctrl, err := m.Controller(ctx, c.Sender())
	if err != nil {
		return m.Reply(c, err)
	}

	// сессия этой викторины уже открыта в контроллере: просто показываем вопросы
	if snap := ctrl.Snapshot(); snap.State == session.StateActive && snap.QuizID == quizID && quizID != "" {
		return start_quiz_handler.Present(ctx, c, m, ctrl, session.Outcome{Kind: session.OutcomeResumed})
	}

	outcome, err := ctrl.ResumeQuiz(ctx, quizID)
	switch {
	case errors.Is(err, session.ErrMissingSession):
		// предупреждение уже отправил Presenter
		return nil
	case errors.Is(err, session.ErrSessionInProgress):
		return c.Send(m.Messages.Text(ctx, msgService.WarningFinishOtherKey))
	case err != nil:
		return m.Reply(c, err)
	}
	return start_quiz_handler.Present(ctx, c, m, ctrl, outcome)
}

func (h *ResumeHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
