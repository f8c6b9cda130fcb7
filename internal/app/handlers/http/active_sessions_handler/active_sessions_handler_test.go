package active_sessions_handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	"github.com/stretchr/testify/require"
)

type staticSnapshots map[int64]session.Snapshot

func (s staticSnapshots) Snapshots() map[int64]session.Snapshot { return s }

func TestActiveSessionsHandler_ListsHeldSessions(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	handler := NewActiveSessionsHandler(staticSnapshots{
		2: {State: session.StateActive, HoldsSession: true, QuizID: "q2", SessionID: "s2", HasDeadline: true, ExpiresAt: expires, Remaining: 90 * time.Second, Answered: 1, Total: 3},
		1: {State: session.StateSubmitting, HoldsSession: true, QuizID: "q1", SessionID: "s1"},
		3: {State: session.StateFinished, QuizID: "q3", SessionID: "s3"},
		4: {State: session.StateExpired, HoldsSession: true, QuizID: "q4", SessionID: "s4", HasDeadline: true, ExpiresAt: expires},
		5: {State: session.StateExpired, QuizID: "q5", SessionID: "s5"},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/active", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ActiveSessionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 3, resp.TotalActiveUsers)
	require.Equal(t, int64(1), resp.ActiveSessions[0].TelegramID)
	require.Nil(t, resp.ActiveSessions[0].ExpiresAt)
	require.Equal(t, model.SessionActive, resp.ActiveSessions[0].Status)

	second := resp.ActiveSessions[1]
	require.Equal(t, "q2", second.QuizID)
	require.Equal(t, 90, second.RemainingSeconds)
	require.Equal(t, expires, second.ExpiresAt.UTC())
	require.Equal(t, model.SessionActive, second.Status)

	expired := resp.ActiveSessions[2]
	require.Equal(t, int64(4), expired.TelegramID)
	require.Equal(t, "expired", expired.State)
	require.Equal(t, model.SessionExpired, expired.Status)
}

func TestActiveSessionsHandler_RejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	NewActiveSessionsHandler(staticSnapshots{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/active", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
