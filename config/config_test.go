package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"STORAGE_DRIVER": "memory",
		"JWT_SECRET_KEY": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.RankingsCacheTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 8, cfg.SuggestionLimit)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.SeedDemo)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL":         "postgres://localhost/ladder",
		"JWT_SECRET_KEY":       "secret",
		"SERVER_PORT":          "9090",
		"LOG_LEVEL":            "debug",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"SEED_DEMO":            "true",
		"R2_ACCOUNT_ID":        "acc",
		"R2_ACCESS_KEY_ID":     "key",
		"R2_SECRET_ACCESS_KEY": "secret",
		"R2_BUCKET_NAME":       "bucket",
		"ARCHIVE_SCHEDULE":     "@daily",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.SeedDemo)
	assert.True(t, cfg.ArchiveEnabled())
}

func TestFromLookup_Errors(t *testing.T) {
	base := func(extra map[string]string) map[string]string {
		env := map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": "secret"}
		for k, v := range extra {
			env[k] = v
		}
		return env
	}

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"JWT_SECRET_KEY": "secret"}},
		{"missing secret", map[string]string{"STORAGE_DRIVER": "memory"}},
		{"unknown driver", base(map[string]string{"STORAGE_DRIVER": "sqlite"})},
		{"bad port", base(map[string]string{"SERVER_PORT": "70000"})},
		{"bad ttl", base(map[string]string{"JWT_TTL": "soon"})},
		{"bad level", base(map[string]string{"LOG_LEVEL": "loud"})},
		{"bad limit", base(map[string]string{"SUGGESTION_LIMIT": "0"})},
		{"schedule without r2", base(map[string]string{"ARCHIVE_SCHEDULE": "@daily"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
