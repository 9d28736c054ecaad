package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"lockbox/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
	Store   StoreConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Env  string `env:"ENV" envDefault:"development"` // "development" or "production"
}

// GameConfig holds room and lobby defaults
type GameConfig struct {
	RoomCodeLength   int           `env:"ROOM_CODE_LENGTH" envDefault:"6"`
	StaleGameTimeout time.Duration `env:"STALE_GAME_TIMEOUT" envDefault:"2h"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	DefaultMode      string        `env:"DEFAULT_MODE" envDefault:"coop"`
	DefaultPack      string        `env:"DEFAULT_PACK" envDefault:"mixed"`
	LocksPerRound    int           `env:"LOCKS_PER_ROUND" envDefault:"4"`
	RoundTimeSeconds int           `env:"ROUND_TIME_SECONDS" envDefault:"600"`
	TurnTimeSeconds  int           `env:"TURN_TIME_SECONDS" envDefault:"60"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// StoreConfig holds the preferences database location
type StoreConfig struct {
	Path    string `env:"DB_PATH" envDefault:"data/lockbox.db"`
	Enabled bool   `env:"PROFILES_ENABLED" envDefault:"true"`
}

// Load reads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Game.RoomCodeLength < 4 {
		return nil, fmt.Errorf("ROOM_CODE_LENGTH must be at least 4, got %d", cfg.Game.RoomCodeLength)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// LogLevel parses the configured level, defaulting to info
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LobbySettings returns the settings new rooms start with
func (c *Config) LobbySettings() domain.Settings {
	return domain.Settings{
		Mode:                  domain.Mode(c.Game.DefaultMode),
		ContentPack:           c.Game.DefaultPack,
		LocksPerRound:         c.Game.LocksPerRound,
		RoundTimeLimitSeconds: c.Game.RoundTimeSeconds,
		TurnTimeLimitSeconds:  c.Game.TurnTimeSeconds,
	}.Normalize()
}
