package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/domain/messages/repository"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
)

// MessageStore источник текстов
type MessageStore interface {
	GetMessageByKey(ctx context.Context, messageKey string) (string, error)
}

// MessageService содержит логику для работы с сообщениями
type MessageService struct {
	messageRepo MessageStore
	log         *logger.Logger
}

// NewMessageService создает новый экземпляр MessageService
func NewMessageService(messageRepo MessageStore, log *logger.Logger) *MessageService {
	return &MessageService{messageRepo: messageRepo, log: log}
}

// GetMessageByKey возвращает сообщение по ключу из базы данных, а если его там нет, встроенный текст
func (s *MessageService) GetMessageByKey(ctx context.Context, messageKey string) (string, error) {
	message, err := s.messageRepo.GetMessageByKey(ctx, messageKey)
	if err == nil {
		return message, nil
	}
	if fallback, ok := defaults[messageKey]; ok {
		if !errors.Is(err, repository.ErrMessageNotFound) {
			s.log.Warn("message lookup failed, using default", "key", messageKey, "error", err)
		}
		return fallback, nil
	}
	return "", fmt.Errorf("failed to get message by key: %w", err)
}

// Text форматирует сообщение по ключу. Ошибок не возвращает: в худшем случае отдаёт сам ключ.
func (s *MessageService) Text(ctx context.Context, messageKey string, args ...interface{}) string {
	message, err := s.GetMessageByKey(ctx, messageKey)
	if err != nil {
		s.log.Error("message not available", "key", messageKey, "error", err)
		return messageKey
	}
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

// GetButtons возвращает мапу с текстами кнопок
func (s *MessageService) GetButtons(ctx context.Context) map[string]string {
	buttons := make(map[string]string)
	for _, key := range []string{
		ButtonQuizzesKey, ButtonResumeKey, ButtonSubmitKey,
		ButtonAbandonKey, ButtonLeaveConfirmKey, ButtonLeaveCancelKey,
	} {
		buttons[key] = s.Text(ctx, key)
	}
	return buttons
}
