package middleware

import (
	"fmt"

	"github.com/IT-Nick/quizbot/internal/domain/session"
	"gopkg.in/telebot.v4"
)

// DebugUserActions при включённом режиме отладки присылает пользователю
// его состояние сессии и описание действия после каждого обновления.
func DebugUserActions(enabled bool, registry *session.Registry) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			err := next(c)
			if !enabled {
				return err
			}
			user := c.Sender()
			if user == nil {
				return err
			}
			state, quizID := session.StateIdle, ""
			if ctrl, ok := registry.Get(user.ID); ok {
				snap := ctrl.Snapshot()
				state, quizID = snap.State, snap.QuizID
			}
			debugMsg := fmt.Sprintf("DEBUG: User: %s (ID: %d), State: %s, Quiz: %s, Action: %s",
				user.FirstName, user.ID, state, quizID, Action(c))
			go func() {
				_, _ = c.Bot().Send(user, debugMsg)
			}()
			return err
		}
	}
}
