package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/marcelsud/telegram-ragbot/webhook/secrettoken"
	"github.com/spf13/viper"
)

/* Settings is built once at process start and only read afterwards.
 * Every recognized option comes from the process environment.
 */

const (
	Development = "development"
	Production  = "production"
)

// Placeholder credentials used by the deployment templates
var demoTokens = map[string]bool{
	"your_telegram_bot_token_here": true,
	"demo_token_for_testing":       true,
}

var (
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9:_-]+$`)
	logLevels    = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "WARNING": true, "ERROR": true}
)

// Paths owned by the operator and health endpoints
var reservedPaths = map[string]bool{
	"/":                 true,
	"/health":           true,
	"/metrics":          true,
	"/webhook/set":      true,
	"/stats":            true,
	"/documents/reload": true,
}

type Settings struct {
	Token          string `mapstructure:"TOKEN"`
	BotUsername    string `mapstructure:"BOT_USERNAME"`
	Host           string `mapstructure:"HOST"`
	Port           int    `mapstructure:"PORT"`
	Environment    string `mapstructure:"ENVIRONMENT"`
	WebhookPath    string `mapstructure:"WEBHOOK_PATH"`
	WebhookURL     string `mapstructure:"WEBHOOK_URL"`
	WebhookSecret  string `mapstructure:"WEBHOOK_SECRET"`
	AdminToken     string `mapstructure:"ADMIN_TOKEN"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	TelegramAPIURL string `mapstructure:"TELEGRAM_API_URL"`

	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel    string `mapstructure:"GEMINI_MODEL"`
	EmbeddingModel string `mapstructure:"EMBEDDING_MODEL"`
	PersonaFile    string `mapstructure:"PERSONA_FILE"`
	DocumentsDir   string `mapstructure:"DOCUMENTS_DIR"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	DedupTTL        time.Duration `mapstructure:"DEDUP_TTL"`
	ReplyWorkers    int           `mapstructure:"REPLY_WORKERS"`
	ReplyQueueSize  int           `mapstructure:"REPLY_QUEUE_SIZE"`
	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"HOST":              "0.0.0.0",
	"PORT":              8000,
	"ENVIRONMENT":       Development,
	"WEBHOOK_PATH":      "/webhook",
	"LOG_LEVEL":         "INFO",
	"TELEGRAM_API_URL":  "https://api.telegram.org",
	"GEMINI_MODEL":      "gemini-1.5-flash-002",
	"EMBEDDING_MODEL":   "text-embedding-004",
	"DOCUMENTS_DIR":     "documents",
	"REDIS_DB":          0,
	"DEDUP_TTL":         "10m",
	"REPLY_WORKERS":     4,
	"REPLY_QUEUE_SIZE":  100,
	"RATE_LIMIT_MAX":    10,
	"RATE_LIMIT_WINDOW": "60s",
	"SHUTDOWN_TIMEOUT":  "30s",
}

var keys = []string{
	"TOKEN", "BOT_USERNAME", "HOST", "PORT", "ENVIRONMENT", "WEBHOOK_PATH", "WEBHOOK_URL",
	"WEBHOOK_SECRET", "ADMIN_TOKEN", "LOG_LEVEL", "TELEGRAM_API_URL", "GEMINI_API_KEY",
	"GEMINI_MODEL", "EMBEDDING_MODEL", "PERSONA_FILE", "DOCUMENTS_DIR", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "DEDUP_TTL", "REPLY_WORKERS", "REPLY_QUEUE_SIZE", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "SHUTDOWN_TIMEOUT",
}

// ConfigError lists every problem found in the environment
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// LoadDotEnv copies variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// Load reads the process environment into a validated Settings
func Load() (*Settings, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("binding %s: %w", k, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("parsing environment: %v", err)}}
	}
	s.BotUsername = strings.TrimPrefix(s.BotUsername, "@")
	s.Environment = strings.ToLower(strings.TrimSpace(s.Environment))

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the invariants of a Settings value
func (s *Settings) Validate() error {
	cerr := &ConfigError{}

	if s.Token == "" {
		cerr.add("TOKEN must be set")
	} else if !tokenPattern.MatchString(s.Token) {
		cerr.add("TOKEN has an invalid format")
	}
	if s.BotUsername == "" {
		cerr.add("BOT_USERNAME must be set")
	}

	switch s.Environment {
	case Development, Production:
	default:
		cerr.add("ENVIRONMENT must be %q or %q (got %q)", Development, Production, s.Environment)
	}

	if s.Port < 1 || s.Port > 65535 {
		cerr.add("PORT must be between 1 and 65535 (got %d)", s.Port)
	}

	if !strings.HasPrefix(s.WebhookPath, "/") {
		cerr.add("WEBHOOK_PATH must start with / (got %q)", s.WebhookPath)
	} else if reservedPaths[s.WebhookPath] {
		cerr.add("WEBHOOK_PATH %q collides with a built-in route", s.WebhookPath)
	}

	if s.WebhookURL == "" {
		if s.IsProduction() {
			cerr.add("WEBHOOK_URL must be set when ENVIRONMENT is production")
		}
	} else if err := checkPublicURL(s.WebhookURL); err != nil {
		cerr.add("WEBHOOK_URL %v", err)
	}

	if s.WebhookSecret != "" {
		if err := secrettoken.Validate(s.WebhookSecret); err != nil {
			cerr.add("WEBHOOK_SECRET: %v", err)
		}
	}

	if !logLevels[strings.ToUpper(s.LogLevel)] {
		cerr.add("LOG_LEVEL must be one of DEBUG, INFO, WARNING, ERROR (got %q)", s.LogLevel)
	}

	if _, err := url.ParseRequestURI(s.TelegramAPIURL); err != nil {
		cerr.add("TELEGRAM_API_URL is not a valid URL")
	}

	if s.ReplyWorkers < 1 {
		cerr.add("REPLY_WORKERS must be at least 1")
	}
	if s.ReplyQueueSize < 1 {
		cerr.add("REPLY_QUEUE_SIZE must be at least 1")
	}
	if s.RateLimitMax < 1 {
		cerr.add("RATE_LIMIT_MAX must be at least 1")
	}
	if s.RateLimitWindow <= 0 {
		cerr.add("RATE_LIMIT_WINDOW must be positive")
	}
	if s.DedupTTL <= 0 {
		cerr.add("DEDUP_TTL must be positive")
	}

	if len(cerr.Problems) > 0 {
		return cerr
	}
	return nil
}

func checkPublicURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("must use https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}

// IsProduction reports whether the process runs in the production environment
func (s *Settings) IsProduction() bool {
	return s.Environment == Production
}

// OperatorRoutesEnabled reports whether the webhook and stats routes are mounted.
// Production never exposes them without ADMIN_TOKEN.
func (s *Settings) OperatorRoutesEnabled() bool {
	return !s.IsProduction() || s.AdminToken != ""
}

// IsDemoMode reports whether the token is one of the template placeholders
func (s *Settings) IsDemoMode() bool {
	return demoTokens[s.Token]
}

// WebhookFullURL joins the public base URL and the webhook path.
// It returns an empty string when no public URL is configured.
func (s *Settings) WebhookFullURL() string {
	if s.WebhookURL == "" {
		return ""
	}
	return strings.TrimRight(s.WebhookURL, "/") + s.WebhookPath
}

// Addr is the bind address for the HTTP server
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
