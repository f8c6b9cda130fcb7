package quizzes_handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"github.com/IT-Nick/quizbot/internal/infra/timer"
	"gopkg.in/telebot.v4"
)

// PageSize число викторин на одной странице списка
const PageSize = 5

// QuizzesHandler список викторин: /quizzes [level] [subject=<id>] и кнопки пагинации
type QuizzesHandler struct {
	manager *sessions.Manager
}

func NewQuizzesHandler(manager *sessions.Manager) *QuizzesHandler {
	return &QuizzesHandler{manager: manager}
}

func (h *QuizzesHandler) Handle(c telebot.Context) error {
	ctx := context.Background()
	m := h.manager

	page, filter, paging := parseRequest(c)

	client, err := m.Client(ctx, c.Sender())
	if err != nil {
		return m.Reply(c, err)
	}

	// карточка незавершённой викторины только при первом открытии списка
	if !paging {
		ctrl, err := m.Controller(ctx, c.Sender())
		if err != nil {
			return m.Reply(c, err)
		}
		active, err := ctrl.ActiveSession(ctx)
		if err != nil {
			m.Log.Debug("failed to load active session", "telegram_id", c.Sender().ID, "error", err)
		} else if active != nil && active.HasActiveSession && active.QuizID != "" {
			if err := h.sendActiveCard(ctx, c, active); err != nil {
				return err
			}
		}
	}

	quizzes, err := client.ListQuizzes(ctx, filter)
	if err != nil {
		return m.Reply(c, err)
	}
	if len(quizzes) == 0 {
		return c.Send(m.Messages.Text(ctx, msgService.QuizzesEmptyKey))
	}

	items, page, pages := Paginate(quizzes, page, PageSize)
	text := m.Messages.Text(ctx, msgService.QuizzesHeaderKey)
	if pages > 1 {
		text += fmt.Sprintf(" (%d/%d)", page, pages)
	}
	markup := Keyboard(items, page, pages, filter)

	if paging {
		if err := c.Edit(text, markup); err == nil {
			return nil
		}
		// сообщение могло устареть, отправляем список заново
		if err := c.Delete(); err != nil {
			m.Log.Debug("failed to delete quiz list", "telegram_id", c.Sender().ID, "error", err)
		}
	}
	return c.Send(text, markup)
}

func (h *QuizzesHandler) sendActiveCard(ctx context.Context, c telebot.Context, active *model.ActiveSession) error {
	m := h.manager
	remaining := "—"
	if active.ExpiresAt != nil {
		remaining = session.FormatRemaining(time.Until(*active.ExpiresAt))
	}
	markup := timer.ResumeMarkup(m.Messages.Text(ctx, msgService.ButtonResumeKey), active.QuizID)
	return c.Send(m.Messages.Text(ctx, msgService.ActiveSessionCardKey, remaining), markup)
}

// parseRequest разбирает номер страницы и фильтр из callback или аргументов команды.
// paging означает переход по страницам уже показанного списка.
func parseRequest(c telebot.Context) (page int, filter model.QuizFilter, paging bool) {
	page = 1
	if cb := c.Callback(); cb != nil {
		parts, ok := sessions.SplitData(cb.Data, 3)
		if !ok {
			return page, filter, false
		}
		if n, err := strconv.Atoi(parts[0]); err == nil {
			page = n
		}
		filter.SubjectID, filter.Level = parts[1], parts[2]
		return page, filter, true
	}
	return page, ParseFilter(c.Args()), false
}

// ParseFilter фильтр из аргументов команды: subject=<id>, level=<уровень> или просто уровень
func ParseFilter(args []string) model.QuizFilter {
	var filter model.QuizFilter
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		switch {
		case strings.HasPrefix(arg, "subject="):
			filter.SubjectID = strings.TrimPrefix(arg, "subject=")
		case strings.HasPrefix(arg, "level="):
			filter.Level = strings.ToLower(strings.TrimPrefix(arg, "level="))
		case arg != "":
			filter.Level = strings.ToLower(arg)
		}
	}
	return filter
}

// Paginate возвращает викторины страницы page, номер страницы после ограничения и число страниц
func Paginate(quizzes []model.Quiz, page, size int) ([]model.Quiz, int, int) {
	if size <= 0 {
		size = PageSize
	}
	pages := (len(quizzes) + size - 1) / size
	if pages == 0 {
		return nil, 1, 0
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	from := (page - 1) * size
	to := from + size
	if to > len(quizzes) {
		to = len(quizzes)
	}
	return quizzes[from:to], page, pages
}

// Keyboard кнопки викторин страницы и навигация между страницами
func Keyboard(quizzes []model.Quiz, page, pages int, filter model.QuizFilter) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(quizzes)+1)
	for _, quiz := range quizzes {
		rows = append(rows, markup.Row(markup.Data(quizLabel(quiz), model.QuizKey, quiz.ID)))
	}

	if pages > 1 {
		pageButton := func(text string, target int) telebot.Btn {
			return markup.Data(text, model.QuizzesKey,
				sessions.JoinData(strconv.Itoa(target), filter.SubjectID, filter.Level))
		}
		var nav []telebot.Btn
		if page > 1 {
			nav = append(nav, pageButton("Начало", 1), pageButton("<", page-1))
		}
		if page < pages {
			nav = append(nav, pageButton(">", page+1), pageButton("Конец", pages))
		}
		rows = append(rows, markup.Row(nav...))
	}

	markup.Inline(rows...)
	return markup
}

func quizLabel(quiz model.Quiz) string {
	label := quiz.Title
	if quiz.Level != "" {
		label += " · " + quiz.Level
	}
	if quiz.TimerMinutes > 0 {
		label += fmt.Sprintf(" · %d мин", quiz.TimerMinutes)
	}
	if quiz.Taken {
		label = "✅ " + label
	}
	return label
}

func (h *QuizzesHandler) GetHandlerFunc() telebot.HandlerFunc {
	return func(c telebot.Context) error {
		return h.Handle(c)
	}
}
