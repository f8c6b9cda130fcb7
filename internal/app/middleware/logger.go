package middleware

import (
	"time"

	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"gopkg.in/telebot.v4"
)

// Logger логирует входящие обновления telegram и время их обработки
func Logger(log *logger.Logger) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			start := time.Now()
			err := next(c)

			kv := []interface{}{"update_id", c.Update().ID, "action", Action(c), "duration", time.Since(start)}
			if sender := c.Sender(); sender != nil {
				kv = append(kv, "telegram_id", sender.ID)
			}
			if err != nil {
				log.Warn("update failed", append(kv, "error", err)...)
				return err
			}
			log.Debug("update handled", kv...)
			return nil
		}
	}
}

// Action краткое описание действия пользователя
func Action(c telebot.Context) string {
	if cb := c.Callback(); cb != nil {
		return "callback: " + cb.Unique + " " + cb.Data
	}
	if msg := c.Message(); msg != nil {
		return "message: " + msg.Text
	}
	return "unknown"
}
