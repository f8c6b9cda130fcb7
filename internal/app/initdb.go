package app

import (
	"context"
	"fmt"

	msgRepo "github.com/IT-Nick/quizbot/internal/domain/messages/repository"
	usersRepo "github.com/IT-Nick/quizbot/internal/domain/users/repository"
	"github.com/IT-Nick/quizbot/internal/infra/config"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDatabase устанавливает подключение к базе данных и создаёт таблицы бота
func InitDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pgxpool.Pool, error) {
	const op = "app.InitDatabase"

	connConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse database config: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create database pool: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	for _, schema := range []string{usersRepo.Schema, msgRepo.Schema} {
		if _, err := db.Exec(ctx, schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: failed to apply schema: %w", op, err)
		}
	}

	log.Info("database connected", "host", cfg.Database.Host, "dbname", cfg.Database.Name)
	return db, nil
}
