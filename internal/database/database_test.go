package database

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/recipe-api/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/internal/logger"
)

func TestWaitForDB(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		retries  uint64
		wantErr  bool
	}{
		{name: "ready immediately", failures: 0, retries: 7},
		{name: "ready after retries", failures: 3, retries: 7},
		{name: "gives up", failures: 3, retries: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()

			attempts := min(tt.failures, int(tt.retries)+1)
			for range attempts {
				mock.ExpectPing().WillReturnError(errors.New("connection refused"))
			}
			if !tt.wantErr {
				mock.ExpectPing()
			}

			err = WaitForDB(context.Background(), db, tt.retries, time.Millisecond, logger.Discard())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWaitForDB_ContextCancelled(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = WaitForDB(ctx, db, 5, time.Hour, logger.Discard())
	assert.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DatabaseDriver: "oracle"}, logger.Discard())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestConnect_SQLite(t *testing.T) {
	cfg := &config.Config{
		DatabaseDriver: DriverSQLite,
		SQLitePath:     t.TempDir() + "/recipe.db",
		DBMaxRetries:   1,
		DBRetryDelay:   1,
	}

	db, err := Connect(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)

	for _, table := range []string{"users", "auth_tokens", "recipes", "tags", "ingredients", "recipe_tags", "recipe_ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.NoError(t, Ping(context.Background(), db))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "recipe.db?_foreign_keys=1", SQLiteDSN("recipe.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=1", SQLiteDSN("file:x?mode=memory"))
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	port, err := strconv.ParseInt(mr.Port(), 10, 64)
	require.NoError(t, err)

	client, err := NewRedisClient(context.Background(), &config.Config{RedisHost: mr.Host(), RedisPort: port}, logger.Discard())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	port, _ := strconv.ParseInt(mr.Port(), 10, 64)
	host := mr.Host()
	mr.Close()

	_, err = NewRedisClient(context.Background(), &config.Config{RedisHost: host, RedisPort: port}, logger.Discard())
	assert.Error(t, err)
}
