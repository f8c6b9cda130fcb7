package submit_handler

import (
	"context"
	"errors"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"gopkg.in/telebot.v4"
)

// SubmitHandler отправляет ответы викторины: кнопка под таймером или /submit
type SubmitHandler struct {
	manager *sessions.Manager
}

func NewSubmitHandler(manager *sessions.Manager) *SubmitHandler {
	return &SubmitHandler{manager: manager}
}

func (h *SubmitHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager

	ctrl, ok := m.Registry.Get(c.Sender().ID)
	if !ok {
		return h.notify(c, m.Messages.Text(ctx, msgService.NoActiveSessionKey))
	}
	_ = h.notify(c, m.Messages.Text(ctx, msgService.SubmittingKey))

	// результат, блокировку и истечение показывает Presenter контроллера
	_, err := ctrl.Submit(ctx)
	var incomplete *session.IncompleteAnswersError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &incomplete):
		return c.Send(m.Messages.Text(ctx, msgService.SubmitIncompleteKey, incomplete.Answered, incomplete.Total))
	case errors.Is(err, session.ErrSubmitInProgress):
		return nil
	case errors.Is(err, session.ErrNotActive), errors.Is(err, session.ErrMissingSession):
		return c.Send(m.Messages.Text(ctx, msgService.NoActiveSessionKey))
	}
	if conflict, ok := model.AsConflict(err); ok && conflict.Code != model.ConflictUnknown {
		m.Log.Info("submit rejected", "telegram_id", c.Sender().ID, "code", conflict.Code.String())
		return nil
	}
	return m.Reply(c, err)
}

func (h *SubmitHandler) notify(c telebot.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&telebot.CallbackResponse{Text: text})
	}
	return c.Send(text)
}

func (h *SubmitHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
