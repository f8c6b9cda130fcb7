package answer_handler

import (
	"context"
	"errors"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"gopkg.in/telebot.v4"
)

// AnswerHandler запоминает выбранный вариант ответа: данные questionID|optionID.
// На сервер ответы уходят только при отправке викторины.
type AnswerHandler struct {
	manager *sessions.Manager
}

func NewAnswerHandler(manager *sessions.Manager) *AnswerHandler {
	return &AnswerHandler{manager: manager}
}

func (h *AnswerHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager

	parts, ok := sessions.SplitData(c.Callback().Data, 2)
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: m.Messages.Text(ctx, msgService.ErrorGenericKey, "invalid answer data")})
	}
	questionID, optionID := parts[0], parts[1]

	ctrl, ok := m.Registry.Get(c.Sender().ID)
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: m.Messages.Text(ctx, msgService.NoActiveSessionKey)})
	}

	if err := ctrl.Select(questionID, optionID); err != nil {
		text := m.Messages.Text(ctx, msgService.ErrorGenericKey, err.Error())
		if errors.Is(err, session.ErrNotActive) {
			text = m.Messages.Text(ctx, msgService.NoActiveSessionKey)
		}
		return c.Respond(&telebot.CallbackResponse{Text: text})
	}

	snap := ctrl.Snapshot()
	if snap.Quiz != nil {
		if question, found := snap.Quiz.Question(questionID); found {
			if _, err := c.Bot().EditReplyMarkup(c.Message(), sessions.QuestionMarkup(question, optionID)); err != nil {
				m.Log.Debug("failed to mark selected answer", "telegram_id", c.Sender().ID, "error", err)
			}
		}
	}
	return c.Respond(&telebot.CallbackResponse{Text: m.Messages.Text(ctx, msgService.AnswerSavedKey)})
}

func (h *AnswerHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
