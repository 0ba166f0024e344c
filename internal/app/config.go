package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/dentaldesk/dentaldesk/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	BackendBaseURL      string        `envconfig:"BACKEND_BASE_URL" default:"http://127.0.0.1:5000/api"`
	BackendTimeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"20s"`
	BackendServiceToken string        `envconfig:"BACKEND_SERVICE_TOKEN"`

	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en"`

	DraftTTL             time.Duration `envconfig:"DRAFT_TTL" default:"2h"`
	CollectionCacheTTL   time.Duration `envconfig:"COLLECTION_CACHE_TTL" default:"1m"`
	CategoryCacheTTL     time.Duration `envconfig:"CATEGORY_CACHE_TTL" default:"30m"`
	SuccessRedirectDelay time.Duration `envconfig:"SUCCESS_REDIRECT_DELAY" default:"2s"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	CategoryRefreshCron string `envconfig:"CATEGORY_REFRESH_CRON" default:"@every 15m"`
	WorkerConcurrency   int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.BackendBaseURL == "" {
		return nil, errors.New("backend base url must be provided")
	}
	if cfg.RedisDB < 0 {
		return nil, errors.New("redis db must not be negative")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Redis returns the connection settings shared by the web and worker processes.
func (c *Config) Redis() cache.Config {
	return cache.Config{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}
