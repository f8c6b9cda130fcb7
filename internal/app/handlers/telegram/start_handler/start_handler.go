package start_handler

import (
	"context"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	usersService "github.com/IT-Nick/quizbot/internal/domain/users/service"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"gopkg.in/telebot.v4"
)

// StartHandler структура для обработки команды /start
type StartHandler struct {
	userService    *usersService.UserService
	messageService *msgService.MessageService
	log            *logger.Logger
}

// NewStartHandler возвращает структуру обработчика
func NewStartHandler(userService *usersService.UserService, messageService *msgService.MessageService, log *logger.Logger) *StartHandler {
	return &StartHandler{
		userService:    userService,
		messageService: messageService,
		log:            log,
	}
}

// Handle регистрирует пользователя и приветствует его
func (h *StartHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	user, err := h.userService.GetOrCreateUser(ctx, sender)
	if err != nil {
		h.log.Error("failed to register user", "telegram_id", sender.ID, "error", err)
		return c.Send(h.messageService.Text(ctx, msgService.ErrorGenericKey, "user registration failed"))
	}

	if !user.Linked() {
		return c.Send(h.messageService.Text(ctx, msgService.WelcomeUnlinkedKey, sender.FirstName))
	}

	buttons := h.messageService.GetButtons(ctx)
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(buttons[msgService.ButtonQuizzesKey], model.QuizzesKey)))
	return c.Send(h.messageService.Text(ctx, msgService.WelcomeLinkedKey, sender.FirstName), markup)
}

// GetHandlerFunc возвращает обработчик в формате telebot.HandlerFunc
func (h *StartHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
