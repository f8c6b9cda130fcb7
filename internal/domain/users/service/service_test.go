package service

import (
	"context"
	"testing"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

type memoryStore struct {
	users map[int64]*model.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[int64]*model.User)}
}

func (m *memoryStore) GetUserByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	return m.users[telegramID], nil
}

func (m *memoryStore) UpsertUser(_ context.Context, telegramID int64, username, firstName string) (*model.User, error) {
	u, ok := m.users[telegramID]
	if !ok {
		u = &model.User{ID: len(m.users) + 1, TelegramID: telegramID}
		m.users[telegramID] = u
	}
	u.TelegramUsername = username
	u.TelegramFirstName = &firstName
	return u, nil
}

func (m *memoryStore) SetPlatformToken(_ context.Context, telegramID int64, token *string) error {
	m.users[telegramID].PlatformToken = token
	return nil
}

func (m *memoryStore) CountLinkedUsers(context.Context) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Linked() {
			n++
		}
	}
	return n, nil
}

func TestUserService_LinkAndUnlink(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(newMemoryStore())

	user, err := s.GetOrCreateUser(ctx, &telebot.User{ID: 42, Username: "nick", FirstName: "Nick"})
	require.NoError(t, err)
	require.False(t, user.Linked())

	_, err = s.Token(ctx, 42)
	require.ErrorIs(t, err, ErrNotLinked)

	require.NoError(t, s.LinkToken(ctx, 42, "  jwt-token "))
	token, err := s.Token(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "jwt-token", token)

	linked, err := s.CountLinked(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, linked)

	require.NoError(t, s.Unlink(ctx, 42))
	_, err = s.Token(ctx, 42)
	require.ErrorIs(t, err, ErrNotLinked)
}

func TestUserService_UnknownUserIsNotLinked(t *testing.T) {
	s := NewUserService(newMemoryStore())
	_, err := s.Token(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotLinked)
}

func TestUserService_RejectsEmptyToken(t *testing.T) {
	s := NewUserService(newMemoryStore())
	require.Error(t, s.LinkToken(context.Background(), 42, "   "))
}
