package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/internal/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Open creates the GORM handle for the configured driver without
// contacting the database server.
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		log.Info("🔌 [Database] Using PostgreSQL",
			"host", cfg.PostgreSQLHost,
			"port", cfg.PostgreSQLPort,
			"database", cfg.PostgreSQLDatabase,
		)
		dialector = postgres.Open(cfg.PostgresDSN())
	case DriverSQLite:
		log.Info("🔌 [Database] Using SQLite", "path", cfg.SQLitePath)
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, GormConfig(log, cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// GormConfig is shared by the server and the test helpers so both see the
// same error translation.
func GormConfig(log *slog.Logger, level slog.Level) *gorm.Config {
	return &gorm.Config{
		Logger:               logger.Gorm(log, level),
		TranslateError:       true,
		DisableAutomaticPing: true,
	}
}

// SQLiteDSN enables foreign key enforcement, which SQLite leaves off by default.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=1"
	}
	return path + "?_foreign_keys=1"
}

// Connect opens the database, waits until it answers and applies the schema.
func Connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	retries := uint64(max(cfg.DBMaxRetries, 0))
	if err := WaitForDB(ctx, sqlDB, retries, config.Seconds(cfg.DBRetryDelay), log); err != nil {
		return nil, err
	}

	if err := Migrate(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// WaitForDB pings until the database answers, retrying up to retries times
// with a constant delay between attempts.
func WaitForDB(ctx context.Context, db Pinger, retries uint64, delay time.Duration, log *slog.Logger) error {
	if delay <= 0 {
		delay = time.Second
	}

	log.Info("⏳ [Database] Waiting for database...")

	attempt := 0
	backoff := retry.WithMaxRetries(retries, retry.NewConstant(delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			log.Warn("⏳ [Database] Database unavailable, retrying...",
				"attempt", attempt,
				"max_retries", retries,
				"retry_in", delay,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database not available after %d attempts: %w", attempt, err)
	}

	log.Info("✅ [Database] Database available", "attempts", attempt)
	return nil
}

// Migrate applies the schema. PostgreSQL uses the embedded goose migrations;
// SQLite, used for local runs and tests, is migrated from the models.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	log.Info("🔄 [Database] Running migrations...", "dialect", db.Dialector.Name())

	switch db.Dialector.Name() {
	case DriverPostgres:
		if err := runMigrations(db); err != nil {
			return err
		}
	case DriverSQLite:
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
	default:
		return fmt.Errorf("no migrations for dialect %q", db.Dialector.Name())
	}

	log.Info("✅ [Database] Migrations completed successfully")
	return nil
}

func runMigrations(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	return nil
}

// Ping checks the connection behind db.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
