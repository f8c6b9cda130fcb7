package active_sessions_handler

import (
	"net/http"
	"sort"

	"github.com/IT-Nick/quizbot/internal/domain/session"
	httpError "github.com/IT-Nick/quizbot/internal/pkg/http"
)

// SnapshotSource источник состояния сессий, обычно *session.Registry
type SnapshotSource interface {
	Snapshots() map[int64]session.Snapshot
}

// ActiveSessionsHandler отдаёт сессии, которые бот сейчас удерживает на сервере
type ActiveSessionsHandler struct {
	sessions SnapshotSource
}

// NewActiveSessionsHandler создает новый экземпляр обработчика
func NewActiveSessionsHandler(sessions SnapshotSource) *ActiveSessionsHandler {
	return &ActiveSessionsHandler{sessions: sessions}
}

func (h *ActiveSessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := ActiveSessionsResponse{ActiveSessions: []ActiveSession{}}
	for telegramID, snap := range h.sessions.Snapshots() {
		if !snap.HoldsSession {
			continue
		}
		item := ActiveSession{
			TelegramID:       telegramID,
			QuizID:           snap.QuizID,
			SessionID:        snap.SessionID,
			State:            snap.State.String(),
			Status:           snap.State.SessionStatus(),
			RemainingSeconds: int(snap.Remaining.Seconds()),
			Answered:         snap.Answered,
			Total:            snap.Total,
			Warning:          snap.Warning,
		}
		if snap.HasDeadline {
			expiresAt := snap.ExpiresAt
			item.ExpiresAt = &expiresAt
		}
		response.ActiveSessions = append(response.ActiveSessions, item)
	}
	sort.Slice(response.ActiveSessions, func(i, j int) bool {
		return response.ActiveSessions[i].TelegramID < response.ActiveSessions[j].TelegramID
	})
	response.TotalActiveUsers = len(response.ActiveSessions)

	httpError.JSONResponse(w, http.StatusOK, response)
}
