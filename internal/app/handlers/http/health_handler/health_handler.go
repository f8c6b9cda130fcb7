package health_handler

import (
	"context"
	"net/http"
	"time"

	httpError "github.com/IT-Nick/quizbot/internal/pkg/http"
)

// Pinger зависимость, доступность которой проверяется
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc адаптер функции к Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// LinkedCounter число пользователей с привязанным аккаунтом
type LinkedCounter interface {
	CountLinked(ctx context.Context) (int, error)
}

// Response ответ GET /healthz
type Response struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	LinkedUsers int               `json:"linked_users"`
}

// HealthHandler проверяет зависимости бота
type HealthHandler struct {
	checks map[string]Pinger
	users  LinkedCounter
}

func NewHealthHandler(checks map[string]Pinger, users LinkedCounter) *HealthHandler {
	return &HealthHandler{checks: checks, users: users}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	response := Response{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			response.Status = "degraded"
			response.Checks[name] = err.Error()
			continue
		}
		response.Checks[name] = "ok"
	}
	if h.users != nil {
		if count, err := h.users.CountLinked(ctx); err == nil {
			response.LinkedUsers = count
		}
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httpError.JSONResponse(w, status, response)
}
