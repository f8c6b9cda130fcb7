package abandon_handler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	"github.com/IT-Nick/quizbot/internal/domain/messages/repository"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

const userID int64 = 42

type emptyStore struct{}

func (emptyStore) GetMessageByKey(_ context.Context, key string) (string, error) {
	return "", fmt.Errorf("%w: %s", repository.ErrMessageNotFound, key)
}

type backend struct {
	expiresAt time.Time
	release   chan struct{}

	mu        sync.Mutex
	abandoned []string
}

func (b *backend) StartSession(_ context.Context, quizID string) (*model.Session, error) {
	return &model.Session{SessionID: "s1", QuizID: quizID, ExpiresAt: b.expiresAt}, nil
}

func (b *backend) Heartbeat(context.Context, string) (*model.HeartbeatResponse, error) {
	return &model.HeartbeatResponse{}, nil
}

func (b *backend) AbandonSession(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.abandoned = append(b.abandoned, sessionID)
	return nil
}

func (b *backend) ActiveSession(context.Context) (*model.ActiveSession, error) {
	return &model.ActiveSession{}, nil
}

func (b *backend) QuizStatus(context.Context, string) (*model.QuizStatus, error) {
	return &model.QuizStatus{}, nil
}

func (b *backend) Submit(context.Context, string, model.Submission) (*model.SubmissionResult, error) {
	if b.release != nil {
		<-b.release
	}
	return &model.SubmissionResult{AttemptID: "a1"}, nil
}

func (b *backend) abandonedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.abandoned...)
}

type quizzes struct{}

func (quizzes) GetQuiz(_ context.Context, quizID string) (*model.Quiz, error) {
	return &model.Quiz{ID: quizID, Questions: []model.Question{
		{ID: "q1", Options: []model.Option{{ID: "o1"}}},
	}}, nil
}

// callbackContext нажатие inline кнопки, ответы складываются в responses
type callbackContext struct {
	telebot.Context

	mu        sync.Mutex
	responses []string
	sent      []string
}

func (c *callbackContext) Sender() *telebot.User { return &telebot.User{ID: userID} }

func (c *callbackContext) Callback() *telebot.Callback { return &telebot.Callback{Unique: model.AbandonKey} }

func (c *callbackContext) Respond(resp ...*telebot.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range resp {
		c.responses = append(c.responses, r.Text)
	}
	return nil
}

func (c *callbackContext) Send(what interface{}, _ ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, fmt.Sprint(what))
	return nil
}

func (c *callbackContext) answers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.responses...)
}

func newHandler(t *testing.T, b *backend) (*AbandonHandler, *session.Controller, *msgService.MessageService) {
	t.Helper()
	messages := msgService.NewMessageService(emptyStore{}, logger.NewNop())
	registry := session.NewRegistry()
	t.Cleanup(registry.Close)
	ctrl := registry.GetOrCreate(userID, func() *session.Controller {
		return session.NewController(b, quizzes{}, nil,
			session.WithHeartbeatInterval(time.Hour),
			session.WithCountdownInterval(5*time.Millisecond),
		)
	})
	manager := &sessions.Manager{Messages: messages, Registry: registry, Log: logger.NewNop()}
	return NewAbandonHandler(manager), ctrl, messages
}

func TestHandle_AbandonsAfterLocalExpiry(t *testing.T) {
	b := &backend{expiresAt: time.Now().Add(-time.Second)}
	h, ctrl, _ := newHandler(t, b)

	_, err := ctrl.Start(context.Background(), "quiz-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().State == session.StateExpired
	}, time.Second, 5*time.Millisecond)
	require.True(t, ctrl.NeedsLeaveConfirmation())

	c := &callbackContext{}
	require.NoError(t, h.Handle(c))

	require.Equal(t, []string{"s1"}, b.abandonedIDs())
	require.Equal(t, session.StateAbandoned, ctrl.Snapshot().State)
}

func TestHandle_NoSession(t *testing.T) {
	h, _, messages := newHandler(t, &backend{})

	c := &callbackContext{}
	require.NoError(t, h.Handle(c))

	require.Equal(t, []string{messages.Text(context.Background(), msgService.NoActiveSessionKey)}, c.answers())
}

func TestHandle_RefusedWhileSubmitting(t *testing.T) {
	b := &backend{expiresAt: time.Now().Add(time.Hour), release: make(chan struct{})}
	h, ctrl, messages := newHandler(t, b)

	_, err := ctrl.Start(context.Background(), "quiz-1")
	require.NoError(t, err)
	require.NoError(t, ctrl.Select("q1", "o1"))

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().Submitting()
	}, time.Second, 5*time.Millisecond)

	c := &callbackContext{}
	require.NoError(t, h.Handle(c))
	require.Equal(t, []string{messages.Text(context.Background(), msgService.SubmittingKey)}, c.answers())

	close(b.release)
	require.NoError(t, <-done)
	require.Equal(t, session.StateFinished, ctrl.Snapshot().State)
	require.Empty(t, b.abandonedIDs())
}
