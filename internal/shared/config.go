package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Store drivers accepted by [StoreConfig].
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config represents the application configuration loaded from a TOML file and overlaid with environment variables.
type Config struct {
	Telegram TelegramConfig `toml:"telegram"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Log      LogConfig      `toml:"log"`
	Remote   RemoteConfig   `toml:"remote"`
}

// TelegramConfig contains the bot token. The token doubles as the secret webhook path.
//
// Username is looked up with getMe when empty.
type TelegramConfig struct {
	Token    string `toml:"token"`
	Username string `toml:"username"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	Scopes         []string `toml:"scopes"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

// StoreConfig selects the token store backend.
type StoreConfig struct {
	Driver string `toml:"driver"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// RemoteConfig points the CLI remote and TUI at a running relay.
type RemoteConfig struct {
	URL    string `toml:"url"`
	UserID string `toml:"user_id"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the config. Unset or empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.Telegram.Token, "TELEGRAM_TOKEN")
	setString(&c.Telegram.Username, "TELEGRAM_BOT_USERNAME")
	setString(&c.Spotify.ClientID, "SPOTIPY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIPY_CLIENT_SECRET")
	setString(&c.Server.BaseURL, "WEBHOOK_BASE_URL")
	setString(&c.Store.Driver, "SPOTCTL_STORE")
	setString(&c.Database.Path, "SPOTCTL_DATABASE_PATH")
	setString(&c.Redis.Addr, "SPOTCTL_REDIS_ADDR")
	setString(&c.Log.Level, "SPOTCTL_LOG_LEVEL")

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT must be a number, got %q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}

	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	return nil
}

// Validate checks that every key the relay needs at runtime is present.
//
// All missing keys are reported together.
func (c *Config) Validate() error {
	var missing []string
	if c.Telegram.Token == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if c.Spotify.ClientID == "" {
		missing = append(missing, "SPOTIPY_CLIENT_ID")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "SPOTIPY_CLIENT_SECRET")
	}
	if c.Server.BaseURL == "" {
		missing = append(missing, "WEBHOOK_BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	switch c.Store.Driver {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// RedirectURI returns the OAuth redirect target derived from the public base URL.
func (c *Config) RedirectURI() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/callback"
}

// WebhookPath returns the secret webhook path segment.
func (c *Config) WebhookPath() string {
	return "/" + c.Telegram.Token
}

// SpotifyTimeout returns the upstream HTTP timeout, defaulting to 10 seconds.
func (c *Config) SpotifyTimeout() time.Duration {
	if c.Spotify.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Spotify.TimeoutSeconds) * time.Second
}
