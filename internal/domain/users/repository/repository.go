package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema таблица пользователей бота
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id                  SERIAL PRIMARY KEY,
    telegram_id         BIGINT NOT NULL UNIQUE,
    telegram_username   TEXT NOT NULL DEFAULT '',
    telegram_first_name TEXT,
    platform_token      TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const userColumns = `id, telegram_id, telegram_username, telegram_first_name, platform_token, created_at, updated_at`

// UserRepository пользователи бота в PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.TelegramID, &user.TelegramUsername, &user.TelegramFirstName,
		&user.PlatformToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByTelegramID ищет пользователя по ID telegram. Если его нет, возвращает nil, nil.
func (r *UserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	row := r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE telegram_id=$1", telegramID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}
	return user, nil
}

// UpsertUser создает пользователя или обновляет его имя в telegram
func (r *UserRepository) UpsertUser(ctx context.Context, telegramID int64, username, firstName string) (*model.User, error) {
	query := `
        INSERT INTO users (telegram_id, telegram_username, telegram_first_name)
        VALUES ($1, $2, $3)
        ON CONFLICT (telegram_id) DO UPDATE
            SET telegram_username = EXCLUDED.telegram_username,
                telegram_first_name = EXCLUDED.telegram_first_name,
                updated_at = now()
        RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, telegramID, username, firstName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// SetPlatformToken сохраняет токен платформы. nil отвязывает аккаунт.
func (r *UserRepository) SetPlatformToken(ctx context.Context, telegramID int64, token *string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE users SET platform_token=$1, updated_at=now() WHERE telegram_id=$2", token, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update platform token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update platform token: user %d not found", telegramID)
	}
	return nil
}

// CountLinkedUsers число пользователей с привязанным токеном
func (r *UserRepository) CountLinkedUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM users WHERE platform_token IS NOT NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count linked users: %w", err)
	}
	return count, nil
}
