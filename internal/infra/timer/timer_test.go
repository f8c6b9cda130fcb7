package timer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/IT-Nick/quizbot/internal/infra/report"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

type keyTexts struct{}

func (keyTexts) Text(_ context.Context, key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	return key + strings.Join(parts, " ")
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []interface{}
	opts    [][]interface{}
	edits   []string
	editErr error
	nextID  int
}

func (m *fakeMessenger) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, what)
	m.opts = append(m.opts, opts)
	m.nextID++
	return &telebot.Message{ID: m.nextID, Chat: &telebot.Chat{ID: 1}}, nil
}

func (m *fakeMessenger) Edit(_ telebot.Editable, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return nil, m.editErr
	}
	m.edits = append(m.edits, fmt.Sprint(what))
	return &telebot.Message{}, nil
}

func newUpdater(m *fakeMessenger, snap session.Snapshot) *Updater {
	u := NewTimerUpdater(m, keyTexts{}, &telebot.Chat{ID: 1}, "https://quiz.example/", logger.NewNop())
	u.Bind(func() session.Snapshot { return snap })
	return u
}

func TestUpdater_SendsTimerOnceThenEdits(t *testing.T) {
	m := &fakeMessenger{}
	snap := session.Snapshot{State: session.StateActive, HasDeadline: true, Remaining: 90 * time.Second, Answered: 1, Total: 2}
	u := newUpdater(m, snap)

	u.OnState(session.StateActive)
	require.Len(t, m.sent, 1)
	require.Equal(t, msgService.TimerKey+"1:30 1 2", m.sent[0])

	u.OnTick(90 * time.Second)
	require.Empty(t, m.edits, "same text must not be re-sent")

	snap.Remaining = 89 * time.Second
	u.Bind(func() session.Snapshot { return snap })
	u.OnTick(89 * time.Second)
	require.Len(t, m.sent, 1)
	require.Equal(t, []string{msgService.TimerKey + "1:29 1 2"}, m.edits)
}

func TestUpdater_IgnoresNotModified(t *testing.T) {
	m := &fakeMessenger{}
	snap := session.Snapshot{State: session.StateActive, HasDeadline: true, Remaining: time.Minute}
	u := newUpdater(m, snap)
	u.OnState(session.StateActive)

	m.editErr = errors.New("telegram: Bad Request: message is not modified (400)")
	snap.Remaining = 59 * time.Second
	u.Bind(func() session.Snapshot { return snap })
	u.OnTick(59 * time.Second)
	require.Equal(t, msgService.TimerKey+"0:59 0 0", u.lastText)
}

func TestUpdater_NoTickAfterTerminalState(t *testing.T) {
	m := &fakeMessenger{}
	u := newUpdater(m, session.Snapshot{State: session.StateFinished})
	u.OnTick(time.Minute)
	require.Empty(t, m.sent)
	require.Empty(t, m.edits)
}

func TestUpdater_TranslatesWarnings(t *testing.T) {
	m := &fakeMessenger{}
	u := newUpdater(m, session.Snapshot{})
	u.OnWarning(session.WarningHeartbeatFailed)
	u.OnWarning("")
	require.Equal(t, []interface{}{msgService.WarningHeartbeatKey}, m.sent)
}

func TestUpdater_NavigatesToAttempt(t *testing.T) {
	m := &fakeMessenger{}
	u := newUpdater(m, session.Snapshot{})
	u.OnNavigate(session.Route{Kind: session.RouteAttempt, AttemptID: "a1"})
	require.Equal(t, msgService.AttemptLinkKey+"https://quiz.example/attempts/a1", m.sent[0])
}

func TestUpdater_NavigatesToBusyQuiz(t *testing.T) {
	m := &fakeMessenger{}
	u := newUpdater(m, session.Snapshot{})
	u.OnNavigate(session.Route{Kind: session.RouteQuiz, QuizID: "quiz-2", SessionID: "s-other", Message: session.WarningFinishOther})
	u.OnNavigate(session.Route{Kind: session.RouteQuiz})

	require.Equal(t, []interface{}{msgService.BusyElsewhereKey, msgService.BusyElsewhereKey}, m.sent)
	require.Len(t, m.opts[0], 1)
	markup, ok := m.opts[0][0].(*telebot.ReplyMarkup)
	require.True(t, ok)
	btn := markup.InlineKeyboard[0][0]
	require.Equal(t, msgService.ButtonResumeKey, btn.Text)
	require.Equal(t, model.ResumeKey, btn.Unique)
	require.Equal(t, "quiz-2", btn.Data)
	require.Empty(t, m.opts[1], "unknown quiz gets no resume button")
}

func TestResumeMarkup_FitsCallbackLimit(t *testing.T) {
	quizID := strings.Repeat("f", 24)
	markup := ResumeMarkup("Продолжить", quizID)
	btn := markup.InlineKeyboard[0][0]
	require.Equal(t, quizID, btn.Data)
	// telebot шлёт "\f<unique>|<data>", telegram принимает до 64 байт
	require.LessOrEqual(t, len("\f"+btn.Unique+"|"+btn.Data), 64)
}

func TestUpdater_FinishedSendsQRCode(t *testing.T) {
	m := &fakeMessenger{}
	u := newUpdater(m, session.Snapshot{})
	u.OnFinished(model.SubmissionResult{AttemptID: "a1", Score: 1, TotalQuestions: 2, CorrectAnswersCount: 1})

	require.Len(t, m.sent, 1)
	photo, ok := m.sent[0].(*telebot.Photo)
	require.True(t, ok)
	require.Contains(t, photo.Caption, "https://quiz.example/attempts/a1")
	require.Contains(t, photo.Caption, msgService.ResultKey+"1 2 50 0 0")
}

type fakeReports struct {
	got report.Data
}

func (r *fakeReports) Render(d report.Data) ([]byte, error) {
	r.got = d
	return []byte("%PDF-1.3"), nil
}

func TestUpdater_FinishedSendsReport(t *testing.T) {
	m := &fakeMessenger{}
	quiz := &model.Quiz{ID: "q1", Title: "Go"}
	u := newUpdater(m, session.Snapshot{Quiz: quiz, Selected: map[string]string{"x": "y"}})
	reports := &fakeReports{}
	u.SetReports(reports, "Nick")

	u.OnFinished(model.SubmissionResult{AttemptID: "a1"})

	require.Len(t, m.sent, 2)
	doc, ok := m.sent[1].(*telebot.Document)
	require.True(t, ok)
	require.Equal(t, "quiz_report_a1.pdf", doc.FileName)
	require.Equal(t, "Nick", reports.got.UserName)
	require.Same(t, quiz, reports.got.Quiz)
	require.Equal(t, "y", reports.got.Selected["x"])
}

func TestFormatResult_ListsWrongAnswers(t *testing.T) {
	text := FormatResult(context.Background(), keyTexts{}, model.SubmissionResult{
		Score: 1, TotalQuestions: 2, CorrectAnswersCount: 1,
		WrongAnswers: []model.WrongAnswerFeedback{{
			QuestionText:      "2+2?",
			Explanation:       "four",
			SuggestedArticles: []model.ArticleRecommendation{{Title: "Arithmetic"}},
		}},
	})
	require.True(t, strings.HasPrefix(text, msgService.ResultKey))
	require.Contains(t, text, msgService.ResultWrongItemKey+"2+2?: four")
	require.Contains(t, text, "Arithmetic")
}
