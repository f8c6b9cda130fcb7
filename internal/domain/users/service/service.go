package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"gopkg.in/telebot.v4"
)

// ErrNotLinked аккаунт telegram не привязан к платформе
var ErrNotLinked = errors.New("telegram account is not linked to the platform")

// UserStore хранилище пользователей
type UserStore interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpsertUser(ctx context.Context, telegramID int64, username, firstName string) (*model.User, error)
	SetPlatformToken(ctx context.Context, telegramID int64, token *string) error
	CountLinkedUsers(ctx context.Context) (int, error)
}

// UserService содержит логику бизнес-операций для пользователей
type UserService struct {
	userRepo UserStore
}

// NewUserService создает новый экземпляр UserService
func NewUserService(userRepo UserStore) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetOrCreateUser возвращает пользователя telegram, создавая его при первом обращении
func (s *UserService) GetOrCreateUser(ctx context.Context, sender *telebot.User) (*model.User, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	user, err := s.userRepo.UpsertUser(ctx, sender.ID, sender.Username, sender.FirstName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return user, nil
}

// Token возвращает токен платформы пользователя или ErrNotLinked
func (s *UserService) Token(ctx context.Context, telegramID int64) (string, error) {
	user, err := s.userRepo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if !user.Linked() {
		return "", ErrNotLinked
	}
	return *user.PlatformToken, nil
}

// LinkToken привязывает токен платформы к аккаунту telegram
func (s *UserService) LinkToken(ctx context.Context, telegramID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	if err := s.userRepo.SetPlatformToken(ctx, telegramID, &token); err != nil {
		return fmt.Errorf("failed to link token: %w", err)
	}
	return nil
}

// Unlink забывает токен, например после 401 от платформы
func (s *UserService) Unlink(ctx context.Context, telegramID int64) error {
	if err := s.userRepo.SetPlatformToken(ctx, telegramID, nil); err != nil {
		return fmt.Errorf("failed to unlink user: %w", err)
	}
	return nil
}

// CountLinked число привязанных аккаунтов
func (s *UserService) CountLinked(ctx context.Context) (int, error) {
	return s.userRepo.CountLinkedUsers(ctx)
}
