package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

// StartSession открывает сессию прохождения викторины
func (c *Client) StartSession(ctx context.Context, quizID string) (*model.Session, error) {
	var session model.Session
	path := fmt.Sprintf("/quizzes/%s/start", url.PathEscape(quizID))
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &session); err != nil {
		return nil, err
	}
	if session.QuizID == "" {
		session.QuizID = quizID
	}
	return &session, nil
}

// Heartbeat продлевает сессию и возвращает новое время истечения
func (c *Client) Heartbeat(ctx context.Context, sessionID string) (*model.HeartbeatResponse, error) {
	var resp model.HeartbeatResponse
	path := fmt.Sprintf("/quizzes/session/%s/heartbeat", url.PathEscape(sessionID))
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, errors.New("heartbeat rejected by platform")
	}
	return &resp, nil
}

// AbandonSession закрывает сессию без отправки ответов
func (c *Client) AbandonSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/quizzes/session/%s/abandon", url.PathEscape(sessionID))
	return c.do(ctx, http.MethodPost, path, struct{}{}, nil)
}

// ActiveSession возвращает активную сессию текущего пользователя
func (c *Client) ActiveSession(ctx context.Context) (*model.ActiveSession, error) {
	var active model.ActiveSession
	if err := c.do(ctx, http.MethodGet, "/users/me/active-session", nil, &active); err != nil {
		return nil, err
	}
	return &active, nil
}

// Profile возвращает профиль владельца токена
func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var raw struct {
		model.Profile
		LegacyID string `json:"_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &raw); err != nil {
		return nil, err
	}
	profile := raw.Profile
	profile.ID = firstNonEmpty(profile.ID, raw.LegacyID)
	return &profile, nil
}
