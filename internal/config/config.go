package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string        `yaml:"token"`
	Mode        string        `yaml:"mode"`     // polling only
	Workers     int           `yaml:"workers"`  // update workers, keyed by user
	Language    string        `yaml:"language"` // locale file name, e.g. ru
	DownloadDir string        `yaml:"download_dir"`
	KeepFiles   bool          `yaml:"keep_files"`   // keep CSV files after sending
	FileTTL     time.Duration `yaml:"file_ttl"`     // janitor removes older files
	RateLimit   int           `yaml:"rate_limit"`   // messages per user per minute, 0 disables
	MetricsPort int           `yaml:"metrics_port"` // /metrics listener, negative disables
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type APIConfig struct {
	Port           int           `yaml:"port"`
	Language       string        `yaml:"language"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

type DatabaseConfig struct {
	URL              string        `yaml:"url"`
	MaxConns         int32         `yaml:"max_conns"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	QueryTimeout     time.Duration `yaml:"query_timeout"`
	StatsInterval    time.Duration `yaml:"stats_interval"`
	DisableStmtCache bool          `yaml:"disable_stmt_cache"` // required behind pgbouncer (Supabase pooler)
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ExportConfig struct {
	BaseURL      string        `yaml:"base_url"` // full URL of /export_csv
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Export   ExportConfig   `yaml:"export"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Environment variables that override the YAML file.
const (
	EnvDatabaseURL  = "SUPABASE_DB_URL"
	EnvDatabaseURL2 = "DATABASE_URL"
	EnvBotToken     = "TELEGRAM_BOT_TOKEN"
	EnvAPIURL       = "API_URL"
)

// LoadConfig reads the YAML file at path (optional when the file does not exist),
// applies environment overrides and defaults. Validation is per process,
// see ValidateAPI and ValidateBot.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg, os.LookupEnv)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseURL); ok && strings.TrimSpace(v) != "" {
		cfg.Database.URL = strings.TrimSpace(v)
	} else if v, ok := lookup(EnvDatabaseURL2); ok && strings.TrimSpace(v) != "" {
		cfg.Database.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvBotToken); ok && strings.TrimSpace(v) != "" {
		cfg.Bot.Token = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.Export.BaseURL = strings.TrimSpace(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Bot.DownloadDir == "" {
		cfg.Bot.DownloadDir = os.TempDir()
	}
	if cfg.Bot.FileTTL <= 0 {
		cfg.Bot.FileTTL = time.Hour
	}
	if cfg.Bot.RateLimit < 0 {
		cfg.Bot.RateLimit = 0
	}
	if cfg.Bot.MetricsPort == 0 {
		cfg.Bot.MetricsPort = 9091
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8000
	}
	if cfg.API.Language == "" {
		cfg.API.Language = "ru"
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = 60 * time.Second
	}
	if cfg.API.ShutdownGrace <= 0 {
		cfg.API.ShutdownGrace = 10 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.ConnectTimeout <= 0 {
		cfg.Database.ConnectTimeout = 5 * time.Second
	}
	if cfg.Database.QueryTimeout <= 0 {
		cfg.Database.QueryTimeout = 15 * time.Second
	}
	if cfg.Database.StatsInterval <= 0 {
		cfg.Database.StatsInterval = 30 * time.Second
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Export.Timeout <= 0 {
		cfg.Export.Timeout = 60 * time.Second
	}
	if cfg.Export.MaxBodyBytes <= 0 {
		cfg.Export.MaxBodyBytes = 50 << 20 // Telegram bot upload limit
	}
}

// ValidateAPI checks what the export service needs.
func (c *Config) ValidateAPI() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (or %s)", EnvDatabaseURL)
	}
	return nil
}

// ValidateBot checks what the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required (or %s)", EnvBotToken)
	}
	if c.Export.BaseURL == "" {
		return fmt.Errorf("export.base_url is required (or %s)", EnvAPIURL)
	}
	if strings.ToLower(c.Bot.Mode) != "polling" {
		return fmt.Errorf("bot.mode=%s not supported", c.Bot.Mode)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Minute
	}
	return d
}
