package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv         string
	LogLevel       slog.Level
	ApiServicePort string

	DatabaseDriver     string
	PostgreSQLHost     string
	PostgreSQLPort     int64
	PostgreSQLUser     string
	PostgreSQLPassword string
	PostgreSQLDatabase string
	SQLitePath         string
	DBMaxRetries       int64
	DBRetryDelay       int64 // seconds between connection attempts

	JWTSecret          string
	TokenExpiration    int64 // seconds
	TokenPurgeInterval int64 // seconds
	TokenRateLimit     int64 // token requests per minute per client, 0 disables

	RedisHost     string
	RedisPort     int64
	RedisPassword string
	RedisDatabase int64

	MediaStorage   string
	MediaRoot      string
	MediaURL       string
	MaxImageSize   int64
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string

	ReadTimeout     int64
	WriteTimeout    int64
	ShutdownTimeout int64
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() *Config {
	return build(source{})
}

// Load reads the configuration from the environment, falling back to the
// values in the YAML file at path. Keys in the file use the environment
// variable names. An empty path behaves like LoadConfig.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	file := make(map[string]string, len(raw))
	for key, value := range raw {
		file[strings.ToUpper(key)] = fmt.Sprint(value)
	}

	return build(source{file: file}), nil
}

func build(src source) *Config {
	return &Config{
		AppEnv:         src.getEnv("APP_ENV", "development"),   // Default development
		LogLevel:       src.getLogLevel(),                      // Default INFO
		ApiServicePort: src.getEnv("API_SERVICE_PORT", "8080"), // Default 8080

		DatabaseDriver:     strings.ToLower(src.getEnv("DATABASE_DRIVER", "postgres")),
		PostgreSQLHost:     src.getEnv("POSTGRESQL_HOST", "db"),
		PostgreSQLPort:     src.getEnvAsInt64("POSTGRESQL_PORT", 5432),
		PostgreSQLUser:     src.getEnv("POSTGRESQL_USER", "recipe_user"),
		PostgreSQLPassword: src.getEnv("POSTGRESQL_PASSWORD", "recipe_password"),
		PostgreSQLDatabase: src.getEnv("POSTGRESQL_DATABASE", "recipe_db"),
		SQLitePath:         src.getEnv("SQLITE_PATH", "recipe.db"),
		DBMaxRetries:       src.getEnvAsInt64("DB_MAX_RETRIES", 7),
		DBRetryDelay:       src.getEnvAsInt64("DB_RETRY_DELAY", 1),

		JWTSecret:          src.getEnv("JWT_SECRET", "recipe_secret"),
		TokenExpiration:    src.getEnvAsInt64("TOKEN_EXPIRATION", 604800),   // Default 7 days
		TokenPurgeInterval: src.getEnvAsInt64("TOKEN_PURGE_INTERVAL", 3600), // Default 1 hour
		TokenRateLimit:     src.getEnvAsInt64("TOKEN_RATE_LIMIT", 10),

		RedisHost:     src.getEnv("REDIS_HOST", "redis"),
		RedisPort:     src.getEnvAsInt64("REDIS_PORT", 6379),
		RedisPassword: src.getEnv("REDIS_PASSWORD", ""),
		RedisDatabase: src.getEnvAsInt64("REDIS_DATABASE", 0),

		MediaStorage:   strings.ToLower(src.getEnv("MEDIA_STORAGE", "local")),
		MediaRoot:      src.getEnv("MEDIA_ROOT", "/vol/web/media"),
		MediaURL:       src.getEnv("MEDIA_URL", "/static/media"),
		MaxImageSize:   src.getEnvAsInt64("MAX_IMAGE_SIZE", 5*1024*1024), // Default 5 MB
		S3Bucket:       src.getEnv("S3_BUCKET", ""),
		S3Region:       src.getEnv("S3_REGION", "us-east-1"),
		S3BaseEndpoint: src.getEnv("S3_BASE_ENDPOINT", ""),
		S3AccessKey:    src.getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    src.getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:    src.getEnv("S3_PUBLIC_URL", ""),

		ReadTimeout:     src.getEnvAsInt64("READ_TIMEOUT", 10),
		WriteTimeout:    src.getEnvAsInt64("WRITE_TIMEOUT", 30),
		ShutdownTimeout: src.getEnvAsInt64("SHUTDOWN_TIMEOUT", 30),
	}
}

// Seconds converts one of the second-valued settings into a duration.
func Seconds(v int64) time.Duration {
	return time.Duration(v) * time.Second
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.AppEnv) == "production"
}

// PostgresDSN builds the connection string for the PostgreSQL driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.PostgreSQLHost,
		c.PostgreSQLUser,
		c.PostgreSQLPassword,
		c.PostgreSQLDatabase,
		c.PostgreSQLPort,
	)
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

func (s source) lookup(key string) (string, bool) {
	if value, exists := os.LookupEnv(key); exists {
		return value, true
	}
	value, exists := s.file[key]
	return value, exists
}

func (s source) getEnv(key, fallback string) string {
	if value, exists := s.lookup(key); exists {
		return value
	}
	return fallback
}

func (s source) getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := s.lookup(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func (s source) getLogLevel() slog.Level {
	levelStr := s.getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
