package login_handler

import (
	"context"
	"strings"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"gopkg.in/telebot.v4"
)

// LoginHandler привязывает токен платформы: /login <token>
type LoginHandler struct {
	manager *sessions.Manager
}

func NewLoginHandler(manager *sessions.Manager) *LoginHandler {
	return &LoginHandler{manager: manager}
}

func (h *LoginHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager
	sender := c.Sender()

	token := strings.TrimSpace(c.Message().Payload)
	if token == "" {
		return c.Send(m.Messages.Text(ctx, msgService.LoginUsageKey))
	}
	// токен не должен оставаться в переписке
	if err := c.Delete(); err != nil {
		m.Log.Debug("failed to delete login message", "telegram_id", sender.ID, "error", err)
	}

	profile, err := m.Platform.WithAuth(token, nil).Profile(ctx)
	if err != nil {
		m.Log.Info("login rejected", "telegram_id", sender.ID, "error", err)
		return c.Send(m.Messages.Text(ctx, msgService.LoginFailedKey, err.Error()))
	}

	if _, err := m.Users.GetOrCreateUser(ctx, sender); err != nil {
		return m.Reply(c, err)
	}
	if err := m.Users.LinkToken(ctx, sender.ID, token); err != nil {
		return m.Reply(c, err)
	}
	// старый контроллер держит клиента с прежним токеном
	m.Registry.Remove(sender.ID)

	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	m.Log.Info("account linked", "telegram_id", sender.ID, "platform_user", profile.ID)
	return c.Send(m.Messages.Text(ctx, msgService.LoginSuccessKey, name))
}

func (h *LoginHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
