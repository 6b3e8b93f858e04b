//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/wellness/internal/domain"
)

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	repo := NewRepository(pool)

	day := func(d string) time.Time {
		parsed, err := time.Parse(domain.DateOnly, d)
		require.NoError(t, err)
		return parsed
	}

	first, err := repo.Insert(ctx, domain.ActivityRecord{
		UserID: "user-1", Date: day("2024-03-08"), Type: domain.ActivityWorkout, Value: 30, Unit: "minutes",
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second, err := repo.Insert(ctx, domain.ActivityRecord{
		UserID: "user-1", Date: day("2024-03-08"), Type: domain.ActivityHydration, Value: 2, Unit: "liters",
	})
	require.NoError(t, err)

	third, err := repo.Insert(ctx, domain.ActivityRecord{
		UserID: "user-1", Date: day("2024-03-09"), Type: domain.ActivitySleep, Value: 8, Unit: "hours",
	})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, domain.ActivityRecord{
		UserID: "user-2", Date: day("2024-03-09"), Type: domain.ActivitySleep, Value: 6, Unit: "hours",
	})
	require.NoError(t, err)

	records, err := repo.Query(ctx, "user-1", domain.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Date descending, same-date ties by id ascending.
	require.Equal(t, third.ID, records[0].ID)
	require.Equal(t, first.ID, records[1].ID)
	require.Equal(t, second.ID, records[2].ID)

	start := day("2024-03-09")
	records, err = repo.Query(ctx, "user-1", domain.QueryFilter{Start: &start})
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = repo.Query(ctx, "user-1", domain.QueryFilter{Type: domain.ActivityWorkout})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, first.ID, records[0].ID)
}

func TestRepositorySyncBatch(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	repo := NewRepository(pool)

	missing, err := repo.LatestSyncCheckpoint(ctx, "user-1")
	require.NoError(t, err)
	require.Nil(t, missing)

	batch := []domain.ActivityRecord{
		{UserID: "user-1", Date: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), Type: "running", Value: 30, Unit: "minutes"},
		{UserID: "user-1", Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), Type: "walking", Value: 20, Unit: "minutes"},
	}

	stored, checkpoint, err := repo.CommitSyncBatch(ctx, "user-1", batch)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.NotZero(t, checkpoint.ID)
	require.False(t, checkpoint.LastSyncAt.IsZero())

	latest, err := repo.LatestSyncCheckpoint(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, checkpoint.ID, latest.ID)

	_, newer, err := repo.CommitSyncBatch(ctx, "user-1", nil)
	require.NoError(t, err)

	latest, err = repo.LatestSyncCheckpoint(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, newer.ID, latest.ID)

	// Two record events from the first batch plus one sync event per batch.
	var outboxRows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&outboxRows))
	require.Equal(t, 4, outboxRows)

	var syncEvents int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type='device.synced'`).Scan(&syncEvents))
	require.Equal(t, 2, syncEvents)
}

func startDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("wellness"),
		postgrescontainer.WithUsername("wellness"),
		postgrescontainer.WithPassword("wellness"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	contents, err := os.ReadFile(resolvePath(t, "../../../db/postgres/migrations/0001_init.up.sql"))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, string(contents))
	require.NoError(t, err)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}
