package timer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/IT-Nick/quizbot/internal/infra/report"
	"github.com/skip2/go-qrcode"
	"gopkg.in/telebot.v4"
)

// Messenger часть telebot.Bot, которой пользуется Updater
type Messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Texts источник текстов бота
type Texts interface {
	Text(ctx context.Context, messageKey string, args ...interface{}) string
}

// ReportRenderer формирует PDF-отчёт по завершённой попытке
type ReportRenderer interface {
	Render(d report.Data) ([]byte, error)
}

var warningKeys = map[string]string{
	session.WarningHeartbeatFailed: msgService.WarningHeartbeatKey,
	session.WarningSessionExpired:  msgService.WarningExpiredKey,
	session.WarningNotActive:       msgService.WarningNotActiveKey,
	session.WarningSessionMissing:  msgService.WarningMissingKey,
	session.WarningAlreadyTaken:    msgService.WarningAlreadyTakenKey,
	session.WarningFinishOther:     msgService.WarningFinishOtherKey,
}

// Updater показывает сессию одного пользователя в telegram: ведёт сообщение
// с таймером, присылает предупреждения, результаты и переходы.
type Updater struct {
	bot         Messenger
	texts       Texts
	chat        telebot.Recipient
	frontendURL string
	log         *logger.Logger
	reports     ReportRenderer
	userName    string

	mu       sync.Mutex
	snapshot func() session.Snapshot
	timerMsg *telebot.Message
	lastText string
}

func NewTimerUpdater(bot Messenger, texts Texts, chat telebot.Recipient, frontendURL string, log *logger.Logger) *Updater {
	return &Updater{
		bot:         bot,
		texts:       texts,
		chat:        chat,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// Bind подключает источник состояния, обычно Controller.Snapshot
func (tu *Updater) Bind(snapshot func() session.Snapshot) {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	tu.snapshot = snapshot
}

// SetReports включает PDF-отчёт после отправки ответов
func (tu *Updater) SetReports(reports ReportRenderer, userName string) {
	tu.reports = reports
	tu.userName = userName
}

func (tu *Updater) OnState(state session.State) {
	ctx := context.Background()
	switch state {
	case session.StateStarting:
		tu.resetTimer()
	case session.StateActive:
		tu.refreshTimer(ctx, tu.timerText(ctx, tu.currentSnapshot()))
	case session.StateExpired:
		tu.refreshTimer(ctx, tu.texts.Text(ctx, msgService.TimerExpiredKey))
	case session.StateAbandoned, session.StateFinished, session.StateBlocked:
		tu.closeTimer(ctx)
	}
}

func (tu *Updater) OnTick(time.Duration) {
	ctx := context.Background()
	snap := tu.currentSnapshot()
	if !snap.State.Live() {
		return
	}
	tu.refreshTimer(ctx, tu.timerText(ctx, snap))
}

func (tu *Updater) OnWarning(message string) {
	if message == "" {
		return
	}
	ctx := context.Background()
	text := message
	if key, ok := warningKeys[message]; ok {
		text = tu.texts.Text(ctx, key)
	}
	tu.send(text)
}

func (tu *Updater) OnNavigate(route session.Route) {
	ctx := context.Background()
	switch route.Kind {
	case session.RouteAttempt:
		tu.send(tu.texts.Text(ctx, msgService.AttemptLinkKey, tu.AttemptURL(route.AttemptID)))
	case session.RouteDashboard:
		markup := &telebot.ReplyMarkup{}
		markup.Inline(markup.Row(markup.Data(tu.texts.Text(ctx, msgService.ButtonQuizzesKey), model.QuizzesKey)))
		text := tu.texts.Text(ctx, msgService.AbandonedKey)
		if route.Message != "" {
			if key, ok := warningKeys[route.Message]; ok {
				text = tu.texts.Text(ctx, key)
			}
		}
		tu.send(text, markup)
	case session.RouteQuiz:
		text := tu.texts.Text(ctx, msgService.BusyElsewhereKey)
		if route.QuizID == "" {
			tu.send(text)
			return
		}
		tu.send(text, ResumeMarkup(tu.texts.Text(ctx, msgService.ButtonResumeKey), route.QuizID))
	default:
		tu.log.Warn("unknown route", "kind", route.Kind)
	}
}

func (tu *Updater) OnFinished(result model.SubmissionResult) {
	tu.sendResult(result)
	tu.sendReport(result)
}

func (tu *Updater) sendResult(result model.SubmissionResult) {
	ctx := context.Background()
	text := FormatResult(ctx, tu.texts, result)
	if result.AttemptID == "" || tu.frontendURL == "" {
		tu.send(text)
		return
	}
	link := tu.AttemptURL(result.AttemptID)
	text += "\n\n" + tu.texts.Text(ctx, msgService.AttemptLinkKey, link)

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		tu.log.Warn("failed to render attempt qr code", "attempt_id", result.AttemptID, "error", err)
		tu.send(text)
		return
	}
	tu.send(&telebot.Photo{File: telebot.FromReader(bytes.NewReader(png)), Caption: text})
}

func (tu *Updater) sendReport(result model.SubmissionResult) {
	if tu.reports == nil {
		return
	}
	snap := tu.currentSnapshot()
	pdf, err := tu.reports.Render(report.Data{
		UserName: tu.userName,
		Quiz:     snap.Quiz,
		Selected: snap.Selected,
		Result:   result,
	})
	if err != nil {
		tu.log.Warn("failed to render quiz report", "attempt_id", result.AttemptID, "error", err)
		return
	}
	tu.send(&telebot.Document{File: telebot.FromReader(bytes.NewReader(pdf)), FileName: report.FileName(result)})
}

// AttemptURL ссылка на разбор попытки во фронтенде платформы
func (tu *Updater) AttemptURL(attemptID string) string {
	return fmt.Sprintf("%s/attempts/%s", tu.frontendURL, attemptID)
}

// FormatResult текст результата с разбором ошибок
func FormatResult(ctx context.Context, texts Texts, result model.SubmissionResult) string {
	var b strings.Builder
	b.WriteString(texts.Text(ctx, msgService.ResultKey,
		result.CorrectAnswersCount, result.TotalQuestions, result.Percentage(),
		result.PointsEarned, result.UpdatedUserTotalPoints))
	if len(result.WrongAnswers) > 0 {
		b.WriteString("\n\n")
		b.WriteString(texts.Text(ctx, msgService.ResultWrongHeaderKey))
		for _, wrong := range result.WrongAnswers {
			line := wrong.QuestionText
			if wrong.Explanation != "" {
				line += ": " + wrong.Explanation
			}
			b.WriteString("\n")
			b.WriteString(texts.Text(ctx, msgService.ResultWrongItemKey, line))
			for _, article := range wrong.SuggestedArticles {
				b.WriteString(fmt.Sprintf("\n   %s", article.Title))
			}
		}
	}
	return b.String()
}

func (tu *Updater) currentSnapshot() session.Snapshot {
	tu.mu.Lock()
	snapshot := tu.snapshot
	tu.mu.Unlock()
	if snapshot == nil {
		return session.Snapshot{}
	}
	return snapshot()
}

func (tu *Updater) timerText(ctx context.Context, snap session.Snapshot) string {
	if !snap.HasDeadline {
		return tu.texts.Text(ctx, msgService.TimerNoDeadlineKey, snap.Answered, snap.Total)
	}
	return tu.texts.Text(ctx, msgService.TimerKey, session.FormatRemaining(snap.Remaining), snap.Answered, snap.Total)
}

// ResumeMarkup кнопка возврата к викторине. В данных только id викторины:
// id сессии бот узнаёт у сервера, а данные callback ограничены 64 байтами.
func ResumeMarkup(label, quizID string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(label, model.ResumeKey, quizID)))
	return markup
}

func (tu *Updater) controls(ctx context.Context) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data(tu.texts.Text(ctx, msgService.ButtonSubmitKey), model.SubmitKey),
		markup.Data(tu.texts.Text(ctx, msgService.ButtonAbandonKey), model.AbandonKey),
	))
	return markup
}

// refreshTimer правит сообщение с таймером, а если его ещё нет, отправляет новое
func (tu *Updater) refreshTimer(ctx context.Context, text string) {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	if tu.timerMsg != nil && text == tu.lastText {
		return
	}
	markup := tu.controls(ctx)
	if tu.timerMsg == nil {
		msg, err := tu.bot.Send(tu.chat, text, markup)
		if err != nil {
			tu.log.Warn("failed to send timer message", "chat", tu.chat.Recipient(), "error", err)
			return
		}
		tu.timerMsg = msg
		tu.lastText = text
		return
	}
	if _, err := tu.bot.Edit(tu.timerMsg, text, markup); err != nil && !notModified(err) {
		tu.log.Warn("failed to update timer message", "chat", tu.chat.Recipient(), "error", err)
		return
	}
	tu.lastText = text
}

// closeTimer убирает кнопки с сообщения таймера, следующая сессия начнёт новое
func (tu *Updater) closeTimer(ctx context.Context) {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	if tu.timerMsg == nil {
		return
	}
	if tu.lastText != "" {
		if _, err := tu.bot.Edit(tu.timerMsg, tu.lastText); err != nil && !notModified(err) {
			tu.log.Debug("failed to close timer message", "chat", tu.chat.Recipient(), "error", err)
		}
	}
	tu.timerMsg = nil
	tu.lastText = ""
}

func (tu *Updater) resetTimer() {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	tu.timerMsg = nil
	tu.lastText = ""
}

func (tu *Updater) send(what interface{}, opts ...interface{}) {
	if _, err := tu.bot.Send(tu.chat, what, opts...); err != nil {
		tu.log.Warn("failed to send message", "chat", tu.chat.Recipient(), "error", err)
	}
}

func notModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
