package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"intellius-chat-be/pkg/database"

	"github.com/stretchr/testify/assert"
)

type stubSeeder struct {
	keys []string
	err  error
	name string
}

func (s *stubSeeder) SeedEnv(ctx context.Context, name string) ([]string, error) {
	s.name = name
	return s.keys, s.err
}

func TestLoad_Defaults(t *testing.T) {
	// Empty values fall back for durations.
	for _, k := range []string{"JWT_TTL", "CHAT_REPLY_DELAY_MIN", "CHAT_REPLY_DELAY_MAX"} {
		t.Setenv(k, "")
	}
	t.Setenv("DB_DRIVER", database.DriverMySQL)
	t.Setenv("GO_ENV", "development")

	cfg := Load()

	assert.Equal(t, database.DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Second, cfg.Chat.MinReplyDelay)
	assert.Equal(t, 3*time.Second, cfg.Chat.MaxReplyDelay)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("CHAT_REPLY_DELAY_MIN", "0.5")
	t.Setenv("CHAT_REPLY_DELAY_MAX", "2s")
	t.Setenv("GO_ENV", "Production")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.io , ,http://b.io")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.GormConfig().Host)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Chat.MinReplyDelay)
	assert.Equal(t, 2*time.Second, cfg.Chat.MaxReplyDelay)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.App.OtelEnabled)
	assert.Equal(t, []string{"http://a.io", "http://b.io"}, cfg.CorsOrigins())
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}

func TestSeedFromSecrets(t *testing.T) {
	ctx := context.Background()

	t.Run("no secret name", func(t *testing.T) {
		s := &stubSeeder{}
		assert.Nil(t, SeedFromSecrets(ctx, s, ""))
		assert.Empty(t, s.name)
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		s := &stubSeeder{err: errors.New("access denied")}
		assert.Empty(t, SeedFromSecrets(ctx, s, "intellius"))
		assert.Equal(t, "intellius", s.name)
	})

	t.Run("keys returned", func(t *testing.T) {
		s := &stubSeeder{keys: []string{"DATABASE_HOST"}}
		assert.Equal(t, []string{"DATABASE_HOST"}, SeedFromSecrets(ctx, s, "intellius"))
	})
}
