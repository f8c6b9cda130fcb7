package middleware

import (
	"fmt"

	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"gopkg.in/telebot.v4"
)

// Recover перехватывает панику в обработчике, логирует её и возвращает как ошибку,
// чтобы одно обновление не роняло бота.
func Recover(log *logger.Logger) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					switch x := r.(type) {
					case error:
						err = fmt.Errorf("recovered from panic: %w", x)
					default:
						err = fmt.Errorf("recovered from panic: %v", x)
					}
					userID := int64(0)
					if sender := c.Sender(); sender != nil {
						userID = sender.ID
					}
					log.Error("handler panicked", "telegram_id", userID, "error", err)
				}
			}()
			return next(c)
		}
	}
}
