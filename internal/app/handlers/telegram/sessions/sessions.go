package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	usersService "github.com/IT-Nick/quizbot/internal/domain/users/service"
	"github.com/IT-Nick/quizbot/internal/infra/cache"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/IT-Nick/quizbot/internal/infra/platform"
	"github.com/IT-Nick/quizbot/internal/infra/timer"
	"gopkg.in/telebot.v4"
)

// Settings интервалы протокола сессии
type Settings struct {
	HeartbeatInterval time.Duration
	CountdownInterval time.Duration
	CallTimeout       time.Duration
}

// Manager собирает для пользователя telegram клиента платформы и контроллер сессии
type Manager struct {
	Users       *usersService.UserService
	Messages    *msgService.MessageService
	Platform    *platform.Client
	QuizCache   *cache.QuizCache
	Registry    *session.Registry
	Bot         timer.Messenger
	Reports     timer.ReportRenderer
	FrontendURL string
	Settings    Settings
	Log         *logger.Logger
}

// Client клиент платформы с токеном пользователя. При 401 аккаунт отвязывается.
func (m *Manager) Client(ctx context.Context, sender *telebot.User) (*platform.Client, error) {
	token, err := m.Users.Token(ctx, sender.ID)
	if err != nil {
		return nil, err
	}
	userID := sender.ID
	return m.Platform.WithAuth(token, func() { m.onUnauthorized(userID) }), nil
}

func (m *Manager) onUnauthorized(userID int64) {
	ctx := context.Background()
	if err := m.Users.Unlink(ctx, userID); err != nil {
		m.Log.Error("failed to unlink user", "telegram_id", userID, "error", err)
	}
	// хук может сработать внутри горутины контроллера, поэтому закрываем его отдельно
	go m.Registry.Remove(userID)
	if _, err := m.Bot.Send(&telebot.User{ID: userID}, m.Messages.Text(ctx, msgService.UnauthorizedKey)); err != nil {
		m.Log.Warn("failed to notify unauthorized user", "telegram_id", userID, "error", err)
	}
}

// Controller контроллер сессии пользователя, создаётся при первом обращении
func (m *Manager) Controller(ctx context.Context, sender *telebot.User) (*session.Controller, error) {
	if ctrl, ok := m.Registry.Get(sender.ID); ok {
		return ctrl, nil
	}
	client, err := m.Client(ctx, sender)
	if err != nil {
		return nil, err
	}
	var quizzes session.QuizProvider = client
	if m.QuizCache != nil {
		quizzes = m.QuizCache.Through(client)
	}
	return m.Registry.GetOrCreate(sender.ID, func() *session.Controller {
		updater := timer.NewTimerUpdater(m.Bot, m.Messages, sender, m.FrontendURL, m.Log)
		if m.Reports != nil {
			updater.SetReports(m.Reports, sender.FirstName)
		}
		ctrl := session.NewController(client, quizzes, updater,
			session.WithLogger(m.Log.With("telegram_id", sender.ID)),
			session.WithHeartbeatInterval(m.Settings.HeartbeatInterval),
			session.WithCountdownInterval(m.Settings.CountdownInterval),
			session.WithCallTimeout(m.Settings.CallTimeout),
		)
		updater.Bind(ctrl.Snapshot)
		return ctrl
	}), nil
}

// Reply отвечает на ошибку платформы понятным пользователю текстом
func (m *Manager) Reply(c telebot.Context, err error) error {
	ctx := context.Background()
	var text string
	switch {
	case errors.Is(err, usersService.ErrNotLinked):
		text = m.Messages.Text(ctx, msgService.NotLinkedKey)
	case errors.Is(err, model.ErrUnauthorized):
		text = m.Messages.Text(ctx, msgService.UnauthorizedKey)
	default:
		m.Log.Warn("handler failed", "telegram_id", c.Sender().ID, "error", err)
		text = m.Messages.Text(ctx, msgService.ErrorGenericKey, err.Error())
	}
	if c.Callback() != nil {
		_ = c.Respond(&telebot.CallbackResponse{Text: text})
	}
	return c.Send(text)
}

// SendQuestions отправляет все вопросы викторины с кнопками вариантов
func (m *Manager) SendQuestions(c telebot.Context, snap session.Snapshot) error {
	if snap.Quiz == nil {
		return nil
	}
	ctx := context.Background()
	total := len(snap.Quiz.Questions)
	for i, question := range snap.Quiz.Questions {
		text := m.Messages.Text(ctx, msgService.QuestionKey, i+1, total, question.Text)
		if err := c.Send(text, QuestionMarkup(question, snap.Selected[question.ID])); err != nil {
			return fmt.Errorf("failed to send question %s: %w", question.ID, err)
		}
	}
	return nil
}

// QuestionMarkup кнопки вариантов ответа, выбранный отмечен галочкой
func QuestionMarkup(question model.Question, selected string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(question.Options))
	for _, option := range question.Options {
		label := option.Text
		if option.ID == selected {
			label = "✔️ " + label
		}
		rows = append(rows, markup.Row(markup.Data(label, model.AnswerKey, JoinData(question.ID, option.ID))))
	}
	markup.Inline(rows...)
	return markup
}

// JoinData упаковывает несколько значений в данные callback
func JoinData(values ...string) string {
	return strings.Join(values, "|")
}

// SplitData разбирает данные callback, собранные JoinData
func SplitData(data string, n int) ([]string, bool) {
	cleaned := strings.TrimSpace(data)
	cleaned = strings.ReplaceAll(cleaned, "\f", "")
	parts := strings.Split(cleaned, "|")
	if len(parts) != n {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}
