package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/marcelsud/telegram-ragbot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	t.Run("success - production with webhook url", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":        "abc",
			"BOT_USERNAME": "testbot",
			"ENVIRONMENT":  "production",
			"WEBHOOK_URL":  "https://x.example/hook",
		})

		s, err := config.Load()
		require.NoError(t, err)

		want := config.Settings{
			Token:           "abc",
			BotUsername:     "testbot",
			Host:            "0.0.0.0",
			Port:            8000,
			Environment:     "production",
			WebhookPath:     "/webhook",
			WebhookURL:      "https://x.example/hook",
			LogLevel:        "INFO",
			TelegramAPIURL:  "https://api.telegram.org",
			GeminiModel:     "gemini-1.5-flash-002",
			EmbeddingModel:  "text-embedding-004",
			DocumentsDir:    "documents",
			DedupTTL:        10 * time.Minute,
			ReplyWorkers:    4,
			ReplyQueueSize:  100,
			RateLimitMax:    10,
			RateLimitWindow: time.Minute,
			ShutdownTimeout: 30 * time.Second,
		}
		if diff := cmp.Diff(want, *s); diff != "" {
			t.Errorf("settings mismatch (-want +got):\n%s", diff)
		}
		assert.True(t, s.IsProduction())
		assert.False(t, s.IsDemoMode())
		assert.Equal(t, "https://x.example/hook/webhook", s.WebhookFullURL())
		assert.Equal(t, "0.0.0.0:8000", s.Addr())
		assert.False(t, s.OperatorRoutesEnabled(), "production without ADMIN_TOKEN hides operator routes")
	})

	t.Run("success - production with admin token exposes operator routes", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":       "abc",
			"ENVIRONMENT": "production",
			"WEBHOOK_URL": "https://x.example/hook",
			"ADMIN_TOKEN": "op-token",
		})

		s, err := config.Load()
		require.NoError(t, err)
		assert.True(t, s.OperatorRoutesEnabled())
	})

	t.Run("success - development without webhook url", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":         "123456:ABC-def_ghi",
			"BOT_USERNAME":  "@testbot",
			"PORT":          "9090",
			"REPLY_WORKERS": "2",
			"DEDUP_TTL":     "90s",
		})

		s, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "testbot", s.BotUsername)
		assert.Equal(t, 9090, s.Port)
		assert.Equal(t, 2, s.ReplyWorkers)
		assert.Equal(t, 90*time.Second, s.DedupTTL)
		assert.False(t, s.IsProduction())
		assert.Empty(t, s.WebhookFullURL())
		assert.True(t, s.OperatorRoutesEnabled(), "development keeps operator routes open")
	})

	t.Run("demo token is recognized", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":        "demo_token_for_testing",
			"BOT_USERNAME": "testbot",
		})

		s, err := config.Load()
		require.NoError(t, err)
		assert.True(t, s.IsDemoMode())
	})

	t.Run("missing token", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":        "",
			"BOT_USERNAME": "testbot",
		})

		_, err := config.Load()
		require.Error(t, err)

		var cerr *config.ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Problems, "TOKEN must be set")
	})

	t.Run("production without webhook url", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":        "abc",
			"BOT_USERNAME": "testbot",
			"ENVIRONMENT":  "production",
			"WEBHOOK_URL":  "",
		})

		_, err := config.Load()

		var cerr *config.ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Error(), "WEBHOOK_URL must be set")
	})

	t.Run("reports every problem at once", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":        "bad token!",
			"BOT_USERNAME": "",
			"ENVIRONMENT":  "staging",
			"PORT":         "70000",
			"WEBHOOK_URL":  "http://insecure.example",
			"LOG_LEVEL":    "TRACE",
		})

		_, err := config.Load()

		var cerr *config.ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Len(t, cerr.Problems, 6)
	})

	t.Run("webhook path collides with health route", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":        "abc",
			"BOT_USERNAME": "testbot",
			"WEBHOOK_PATH": "/health",
		})

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "collides")
	})

	t.Run("invalid webhook secret", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TOKEN":          "abc",
			"BOT_USERNAME":   "testbot",
			"WEBHOOK_SECRET": "has spaces",
		})

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WEBHOOK_SECRET: secret token must be 1-256 characters")
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		err := config.LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
		assert.NoError(t, err)
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("BOT_USERNAME=fromfile\nRAGBOT_DOTENV_ONLY=yes\n"), 0o600))
		t.Setenv("BOT_USERNAME", "fromenv")
		t.Setenv("RAGBOT_DOTENV_ONLY", "")
		os.Unsetenv("RAGBOT_DOTENV_ONLY")

		require.NoError(t, config.LoadDotEnv(path))
		assert.Equal(t, "fromenv", os.Getenv("BOT_USERNAME"))
		assert.Equal(t, "yes", os.Getenv("RAGBOT_DOTENV_ONLY"))
	})
}
