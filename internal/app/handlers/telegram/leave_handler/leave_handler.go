package leave_handler

import (
	"context"
	"errors"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"gopkg.in/telebot.v4"
)

const (
	confirmData = "yes"
	cancelData  = "no"
)

// LeaveHandler уход из викторины через /cancel с подтверждением
type LeaveHandler struct {
	manager *sessions.Manager
}

func NewLeaveHandler(manager *sessions.Manager) *LeaveHandler {
	return &LeaveHandler{manager: manager}
}

// Handle команда /cancel: спрашивает подтверждение, если сессия ещё жива
func (h *LeaveHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager

	ctrl, ok := m.Registry.Get(c.Sender().ID)
	if !ok || !ctrl.NeedsLeaveConfirmation() {
		return c.Send(m.Messages.Text(ctx, msgService.NoActiveSessionKey))
	}
	if ctrl.Snapshot().Submitting() {
		return c.Send(m.Messages.Text(ctx, msgService.SubmittingKey))
	}
	return c.Send(m.Messages.Text(ctx, msgService.LeaveConfirmKey), ConfirmMarkup(m.Messages.GetButtons(ctx)))
}

// HandleConfirm ответ на вопрос о выходе: данные yes или no
func (h *LeaveHandler) HandleConfirm(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager
	_ = c.Respond()
	if err := c.Delete(); err != nil {
		m.Log.Debug("failed to delete leave prompt", "telegram_id", c.Sender().ID, "error", err)
	}

	ctrl, ok := m.Registry.Get(c.Sender().ID)
	if !ok {
		return c.Send(m.Messages.Text(ctx, msgService.NoActiveSessionKey))
	}
	confirmed := c.Callback().Data == confirmData
	left, err := ctrl.Leave(func() bool { return confirmed })
	if errors.Is(err, session.ErrSubmitInProgress) {
		return c.Send(m.Messages.Text(ctx, msgService.SubmittingKey))
	}
	if !left {
		return c.Send(m.Messages.Text(ctx, msgService.LeaveStayedKey))
	}

	buttons := m.Messages.GetButtons(ctx)
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(buttons[msgService.ButtonQuizzesKey], model.QuizzesKey)))
	return c.Send(m.Messages.Text(ctx, msgService.AbandonedKey), markup)
}

// ConfirmMarkup кнопки подтверждения выхода
func ConfirmMarkup(buttons map[string]string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data(buttons[msgService.ButtonLeaveConfirmKey], model.LeaveKey, confirmData),
		markup.Data(buttons[msgService.ButtonLeaveCancelKey], model.LeaveKey, cancelData),
	))
	return markup
}

func (h *LeaveHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}

func (h *LeaveHandler) GetConfirmHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.HandleConfirm(c)
	}
}
