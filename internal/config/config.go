// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"telegram-pinmsg-bot/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string `yaml:"token"`
	Username    string `yaml:"username"`
	Workers     int    `yaml:"workers"`      // inbound stream shards
	PollTimeout int    `yaml:"poll_timeout"` // long-poll timeout in seconds
	Language    string `yaml:"language"`
}

type WebhookConfig struct {
	Enable    bool   `yaml:"enable"`
	Path      string `yaml:"path"`       // path prefix the token hash is appended to
	URLPrefix string `yaml:"url_prefix"` // externally reachable scheme://host
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Colors   bool   `yaml:"colors"`   // console colours
	Pretty   bool   `yaml:"pretty"`   // force console format
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type StorageConfig struct {
	Driver   string `yaml:"driver"` // redis|postgres|memory
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	MaxConns int32  `yaml:"max_conns"`
}

type PromptConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
}

type AnalyticsConfig struct {
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"`
}

type TickConfig struct {
	Interval int `yaml:"interval"` // seconds
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Prompt    PromptConfig    `yaml:"prompt"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Tick      TickConfig      `yaml:"tick"`

	Runtime RuntimeConfig `yaml:"-"`
}

// TickInterval returns the housekeeping interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Tick.Interval) * time.Second
}

// LoadConfig reads the optional YAML file at path, applies environment overrides and
// defaults, and validates the result. Validation failures wrap domain.ErrConfiguration.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("%w: parse config: %v", domain.ErrConfiguration, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// environment only
		default:
			return nil, fmt.Errorf("%w: read config: %v", domain.ErrConfiguration, err)
		}
	}

	applyEnv(&cfg, os.LookupEnv)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays the deployment variables onto cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	flag := func(dst *bool, key string) {
		if v, ok := lookup(key); ok {
			*dst = truthy(v)
		}
	}

	str(&cfg.Bot.Token, "TGBOT_TOKEN")
	str(&cfg.Storage.URL, "STORAGE_URL", "REDIS_URL", "DATABASE_URL", "MONGO_URL")
	str(&cfg.Storage.Driver, "STORAGE_DRIVER")
	num(&cfg.Tick.Interval, "TGBOT_TICK_INTERVAL")
	flag(&cfg.Webhook.Enable, "TGBOT_WEBHOOK_ENABLE")
	str(&cfg.Webhook.Path, "TGBOT_WEBHOOK_PATH")
	str(&cfg.Webhook.URLPrefix, "TGBOT_WEBHOOK_PREFIX")
	num(&cfg.HTTP.Port, "PORT")
	str(&cfg.Log.Level, "LOG_LEVEL")
	flag(&cfg.Log.Colors, "LOG_COLORS")
	flag(&cfg.Log.Pretty, "LOG_PRETTY")
	str(&cfg.Analytics.URL, "ANALYTICS_URL")
	str(&cfg.Analytics.Token, "ANALYTICS_TOKEN", "BOTAN_TOKEN")
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.PollTimeout <= 0 {
		cfg.Bot.PollTimeout = 60
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "en"
	}
	if cfg.Tick.Interval <= 0 {
		cfg.Tick.Interval = 60
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = "/webhook/"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Pretty {
		cfg.Log.Format = "console"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = guessDriver(cfg.Storage.URL)
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	if cfg.Storage.MaxConns <= 0 {
		cfg.Storage.MaxConns = 10
	}
	cfg.Prompt.TTL = normalizeTTL(cfg.Prompt.TTL)
	if cfg.RateLimit.PerMinute == 0 {
		cfg.RateLimit.PerMinute = 20
	}
	if cfg.Analytics.Workers <= 0 {
		cfg.Analytics.Workers = 2
	}
}

func guessDriver(url string) string {
	switch {
	case url == "":
		return DriverMemory
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	default:
		return DriverRedis
	}
}

// Validate performs the startup checks. A process must not serve traffic when it fails.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("%w: bot.token is required", domain.ErrConfiguration)
	}
	if c.Webhook.Enable {
		if c.Webhook.URLPrefix == "" {
			return fmt.Errorf("%w: webhook.url_prefix is required in webhook mode", domain.ErrConfiguration)
		}
		if !strings.HasPrefix(c.Webhook.Path, "/") {
			return fmt.Errorf("%w: webhook.path must start with '/'", domain.ErrConfiguration)
		}
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverRedis, DriverPostgres:
		if c.Storage.URL == "" {
			return fmt.Errorf("%w: storage.url is required for driver %q", domain.ErrConfiguration, c.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", domain.ErrConfiguration, c.Storage.Driver)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Minute
	}
	return d
}
