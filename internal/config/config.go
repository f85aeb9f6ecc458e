// Package config loads runtime settings from the environment, optionally
// seeded from a .env file, and the operator allow-list from config.json.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/storage"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	GuildID      string `env:"DISCORD_GUILD_ID"`

	CommandsDir     string   `env:"COMMANDS_DIR" envDefault:"commands"`
	PermissionsPath string   `env:"PERMISSIONS_PATH" envDefault:"config.json"`
	AllowedUsers    []string `env:"ALLOWED_USERS" envSeparator:","`
	CommandCacheDir string   `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	RedisAddr    string `env:"REDIS_ADDR"`
	RedisPrefix  string `env:"REDIS_PREFIX" envDefault:"dynacmd:cmd:"`

	WebhookTimeout     time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	WebhookMaxAttempts int           `env:"WEBHOOK_MAX_ATTEMPTS" envDefault:"3"`

	PresenceInterval time.Duration `env:"PRESENCE_INTERVAL" envDefault:"1m"`
	KeepAliveAddr    string        `env:"KEEPALIVE_ADDR"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env files when present, then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		log.Info().Msg("No .env file found, falling back to system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case storage.BackendFile:
	case storage.BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT must be positive, got %s", c.WebhookTimeout)
	}
	if c.WebhookMaxAttempts < 1 {
		return fmt.Errorf("WEBHOOK_MAX_ATTEMPTS must be at least 1, got %d", c.WebhookMaxAttempts)
	}
	if c.PresenceInterval <= 0 {
		return fmt.Errorf("PRESENCE_INTERVAL must be positive, got %s", c.PresenceInterval)
	}
	return nil
}

// StoreOptions selects the definition store.
func (c *Config) StoreOptions() storage.Options {
	return storage.Options{
		Backend:     c.StoreBackend,
		Dir:         c.CommandsDir,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}
