package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort    int
	StorageDriver string
	DatabaseURL   string
	JWTSecretKey  string
	JWTTTL        time.Duration
	LogLevel      slog.Level

	RedisURL         string
	RankingsCacheTTL time.Duration
	SuggestionLimit  int

	CORSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
	ArchiveSchedule   string

	SeedDemo bool
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Ошибку не считаем фатальной: .env может отсутствовать
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from any variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		StorageDriver:     strings.ToLower(get("STORAGE_DRIVER", StoragePostgres)),
		DatabaseURL:       get("DATABASE_URL", ""),
		JWTSecretKey:      get("JWT_SECRET_KEY", ""),
		RedisURL:          get("REDIS_URL", ""),
		R2AccountID:       get("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     get("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: get("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      get("R2_BUCKET_NAME", ""),
		R2PublicBaseURL:   get("R2_PUBLIC_BASE_URL", ""),
		ArchiveSchedule:   get("ARCHIVE_SCHEDULE", ""),
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.StorageDriver)
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(get("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if cfg.JWTTTL, err = parseDuration(get("JWT_TTL", "24h"), "JWT_TTL"); err != nil {
		return nil, err
	}
	if cfg.RankingsCacheTTL, err = parseDuration(get("RANKINGS_CACHE_TTL", "5m"), "RANKINGS_CACHE_TTL"); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	limit, err := strconv.Atoi(get("SUGGESTION_LIMIT", "8"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("SUGGESTION_LIMIT must be a positive integer, got %q", get("SUGGESTION_LIMIT", ""))
	}
	cfg.SuggestionLimit = limit

	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.SeedDemo, err = strconv.ParseBool(get("SEED_DEMO", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO environment variable: %w", err)
	}

	if cfg.ArchiveSchedule != "" && !cfg.ArchiveEnabled() {
		return nil, fmt.Errorf("ARCHIVE_SCHEDULE is set but R2 credentials are incomplete")
	}

	return cfg, nil
}

// ArchiveEnabled reports whether every R2 setting needed for uploads is present.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func parseDuration(raw, name string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return d, nil
}
