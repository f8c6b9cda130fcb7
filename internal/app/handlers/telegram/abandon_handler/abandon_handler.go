package abandon_handler

import (
	"context"
	"errors"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"gopkg.in/telebot.v4"
)

// AbandonHandler явный отказ от викторины кнопкой "Покинуть"
type AbandonHandler struct {
	manager *sessions.Manager
}

func NewAbandonHandler(manager *sessions.Manager) *AbandonHandler {
	return &AbandonHandler{manager: manager}
}

func (h *AbandonHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager

	// после локального истечения сессия на сервере ещё держится
	ctrl, ok := m.Registry.Get(c.Sender().ID)
	if !ok || !ctrl.NeedsLeaveConfirmation() {
		return h.notify(c, m.Messages.Text(ctx, msgService.NoActiveSessionKey))
	}
	// переход на список викторин отправляет Presenter
	if err := ctrl.Abandon(ctx); err != nil {
		if errors.Is(err, session.ErrSubmitInProgress) {
			return h.notify(c, m.Messages.Text(ctx, msgService.SubmittingKey))
		}
		return m.Reply(c, err)
	}
	_ = c.Respond()
	return nil
}

func (h *AbandonHandler) notify(c telebot.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&telebot.CallbackResponse{Text: text})
	}
	return c.Send(text)
}

func (h *AbandonHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
