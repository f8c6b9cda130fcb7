package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/google/uuid"
)

// Client HTTP-клиент REST API платформы викторин.
// Экземпляр без токена используется как фабрика: WithAuth возвращает копию для конкретного пользователя.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	log            *logger.Logger
	token          string
	onUnauthorized func()
	now            func() time.Time
}

// NewClient создаёт клиент платформы
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		now:        time.Now,
	}
}

// WithAuth возвращает копию клиента с bearer-токеном пользователя.
// onUnauthorized вызывается при ответе 401 или если срок токена уже истёк.
func (c *Client) WithAuth(token string, onUnauthorized func()) *Client {
	cp := *c
	cp.token = token
	cp.onUnauthorized = onUnauthorized
	return &cp
}

// do выполняет запрос и декодирует ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if tokenExpired(c.token, c.now()) {
		c.unauthorized()
		return fmt.Errorf("%s %s: %w", method, path, model.ErrUnauthorized)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("platform call", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized()
		return fmt.Errorf("%s %s: %w", method, path, model.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w", method, path, decodeError(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) unauthorized() {
	if c.token != "" && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// errorBody тело неуспешного ответа платформы
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	AttemptID string `json:"attemptId"`
	SessionID string `json:"sessionId"`
	QuizID    string `json:"quizId"`
}

// decodeError превращает неуспешный ответ в *model.ConflictError или *model.APIError
func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	if resp.StatusCode != http.StatusConflict {
		return &model.APIError{Status: resp.StatusCode, Message: body.Message}
	}

	code := model.ParseConflictCode(body.Code)
	// Завершённая попытка терминальна и важнее любой сессии
	if code == model.ConflictActiveSessionExists && body.AttemptID != "" {
		code = model.ConflictQuizAlreadyTaken
	}
	return &model.ConflictError{
		Code:      code,
		AttemptID: body.AttemptID,
		SessionID: body.SessionID,
		QuizID:    body.QuizID,
		Message:   body.Message,
	}
}
