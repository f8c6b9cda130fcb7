package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, logger.NewNop()), &calls
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStartSession_SendsBearerAndDecodes(t *testing.T) {
	expires := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/quizzes/q1/start", r.URL.Path)
		require.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, map[string]string{
			"sessionId": "s1", "quizId": "q1", "expiresAt": expires.Format(time.RFC3339),
		})
	})

	session, err := client.WithAuth("opaque-token", nil).StartSession(context.Background(), "q1")
	require.NoError(t, err)
	require.Equal(t, "s1", session.SessionID)
	require.Equal(t, "q1", session.QuizID)
	require.True(t, expires.Equal(session.ExpiresAt))
}

func TestStartSession_DecodesConflicts(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		want model.ConflictError
	}{
		{
			name: "already taken",
			body: map[string]string{"code": "QUIZ_ALREADY_TAKEN", "attemptId": "a1"},
			want: model.ConflictError{Code: model.ConflictQuizAlreadyTaken, AttemptID: "a1"},
		},
		{
			name: "active session",
			body: map[string]string{"code": "ACTIVE_SESSION_EXISTS", "sessionId": "s9", "quizId": "q9"},
			want: model.ConflictError{Code: model.ConflictActiveSessionExists, SessionID: "s9", QuizID: "q9"},
		},
		{
			name: "active session with finished attempt",
			body: map[string]string{"code": "ACTIVE_SESSION_EXISTS", "sessionId": "s9", "quizId": "q1", "attemptId": "a7"},
			want: model.ConflictError{Code: model.ConflictQuizAlreadyTaken, SessionID: "s9", QuizID: "q1", AttemptID: "a7"},
		},
		{
			name: "unknown code",
			body: map[string]string{"code": "SOMETHING_NEW", "message": "nope"},
			want: model.ConflictError{Code: model.ConflictUnknown, Message: "nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusConflict, tt.body)
			})
			_, err := client.StartSession(context.Background(), "q1")
			conflict, ok := model.AsConflict(err)
			require.True(t, ok, "expected conflict, got %v", err)
			require.Equal(t, tt.want, *conflict)
		})
	}
}

func TestDo_UnauthorizedInvokesHook(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "expired"})
	})
	var hooked int32
	_, err := client.WithAuth("opaque", func() { atomic.AddInt32(&hooked, 1) }).ActiveSession(context.Background())
	require.ErrorIs(t, err, model.ErrUnauthorized)
	require.Equal(t, int32(1), atomic.LoadInt32(&hooked))
}

func TestDo_ExpiredJWTShortCircuits(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"hasActiveSession": false})
	})
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	hooked := false
	_, err = client.WithAuth(token, func() { hooked = true }).ActiveSession(context.Background())
	require.ErrorIs(t, err, model.ErrUnauthorized)
	require.True(t, hooked)
	require.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestDo_ValidJWTPassesThrough(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"hasActiveSession": true, "sessionId": "s1", "quizId": "q1"})
	})
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	active, err := client.WithAuth(token, nil).ActiveSession(context.Background())
	require.NoError(t, err)
	require.True(t, active.Matches("s1"))
	require.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestHeartbeat_NotOKIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quizzes/session/s1/heartbeat", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": false})
	})
	_, err := client.Heartbeat(context.Background(), "s1")
	require.Error(t, err)
}

func TestHeartbeat_ServerErrorIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "upstream"})
	})
	_, err := client.Heartbeat(context.Background(), "s1")
	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	_, isConflict := model.AsConflict(err)
	require.False(t, isConflict)
}

func TestGetQuiz_NormalizesLegacyIDs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quizzes/q1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"_id": "q1", "title": "Go basics", "level": "beginner", "hasTaken": true, "attemptId": "a1",
			"subject": {"_id": "sub1", "name": "Go"},
			"questions": [
				{"_id": "qq1", "text": "2+2?", "options": [{"_id": "o1", "text": "4"}, {"id": "o2", "text": "5"}]}
			]
		}`))
	})
	quiz, err := client.GetQuiz(context.Background(), "q1")
	require.NoError(t, err)
	require.Equal(t, "q1", quiz.ID)
	require.True(t, quiz.Taken)
	require.Equal(t, "a1", quiz.AttemptID)
	require.Equal(t, "sub1", quiz.Subject.ID)
	require.Len(t, quiz.Questions, 1)
	require.Equal(t, "qq1", quiz.Questions[0].ID)
	require.Equal(t, "mcq", quiz.Questions[0].Type)
	require.Equal(t, []model.Option{{ID: "o1", Text: "4"}, {ID: "o2", Text: "5"}}, quiz.Questions[0].Options)
}

func TestListQuizzes_PassesFilters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "sub1", r.URL.Query().Get("subjectId"))
		require.Equal(t, "beginner", r.URL.Query().Get("level"))
		writeJSON(w, http.StatusOK, []map[string]string{{"id": "q1", "title": "A"}, {"_id": "q2", "title": "B"}})
	})
	quizzes, err := client.ListQuizzes(context.Background(), model.QuizFilter{SubjectID: "sub1", Level: " beginner "})
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	require.Equal(t, "q2", quizzes[1].ID)
}

func TestSubmit_TrimsPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quizzes/q1/submit", r.URL.Path)
		var body model.Submission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, model.Submission{
			SessionID: "s1",
			Answers:   []model.Answer{{QuestionID: "q1", SelectedOptionID: "optA"}},
		}, body)
		writeJSON(w, http.StatusOK, model.SubmissionResult{Score: 1, TotalQuestions: 1, CorrectAnswersCount: 1})
	})
	result, err := client.Submit(context.Background(), "q1", model.Submission{
		SessionID: " s1 ",
		Answers:   []model.Answer{{QuestionID: " q1", SelectedOptionID: "optA "}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Score)
}

func TestSubmit_MalformedNeverHitsNetwork(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.SubmissionResult{})
	})
	cases := []struct {
		quizID string
		sub    model.Submission
	}{
		{"", model.Submission{SessionID: "s1", Answers: []model.Answer{{QuestionID: "q", SelectedOptionID: "o"}}}},
		{"q1", model.Submission{SessionID: "  ", Answers: []model.Answer{{QuestionID: "q", SelectedOptionID: "o"}}}},
		{"q1", model.Submission{SessionID: "s1"}},
		{"q1", model.Submission{SessionID: "s1", Answers: []model.Answer{{QuestionID: "q", SelectedOptionID: " "}}}},
	}
	for _, tc := range cases {
		_, err := client.Submit(context.Background(), tc.quizID, tc.sub)
		require.ErrorIs(t, err, model.ErrInvalidSubmission)
	}
	require.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSubmit_SessionExpiredConflict(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"code": "SESSION_EXPIRED"})
	})
	_, err := client.Submit(context.Background(), "q1", model.Submission{
		SessionID: "s1", Answers: []model.Answer{{QuestionID: "q", SelectedOptionID: "o"}},
	})
	conflict, ok := model.AsConflict(err)
	require.True(t, ok)
	require.Equal(t, model.ConflictSessionExpired, conflict.Code)
}
