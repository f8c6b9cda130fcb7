package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container is skipped in -short mode")
	}
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "quizbot",
			"POSTGRES_PASSWORD": "quizbot",
			"POSTGRES_DB":       "quizbot",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := pgxpool.New(ctx, fmt.Sprintf("postgres://quizbot:quizbot@%s:%s/quizbot", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(ctx, Schema)
	require.NoError(t, err)
	return db
}

func TestUserRepository_UpsertAndToken(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(startPostgres(ctx, t))

	missing, err := repo.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	require.Nil(t, missing)

	created, err := repo.UpsertUser(ctx, 42, "nick", "Nick")
	require.NoError(t, err)
	require.Equal(t, int64(42), created.TelegramID)
	require.False(t, created.Linked())

	renamed, err := repo.UpsertUser(ctx, 42, "nick2", "Nick")
	require.NoError(t, err)
	require.Equal(t, created.ID, renamed.ID)
	require.Equal(t, "nick2", renamed.TelegramUsername)

	token := "jwt"
	require.NoError(t, repo.SetPlatformToken(ctx, 42, &token))
	got, err := repo.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	require.True(t, got.Linked())

	linked, err := repo.CountLinkedUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, linked)

	require.NoError(t, repo.SetPlatformToken(ctx, 42, nil))
	got, err = repo.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	require.False(t, got.Linked())

	require.Error(t, repo.SetPlatformToken(ctx, 7, &token))
}
