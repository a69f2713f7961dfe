package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Stats       StatsConfig       `yaml:"stats"`
	GameServer  GameServerConfig  `yaml:"game_server"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	HTTPPort   int    `yaml:"http_port"`
	StaticDir  string `yaml:"static_dir"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// StatsConfig describes where the game server writes cumulative player stats.
// The remote table is preferred; the legacy per-player file tree is the fallback.
type StatsConfig struct {
	RemoteDSN    string        `yaml:"remote_dsn"`
	RemoteTable  string        `yaml:"remote_table"`
	PlayersDir   string        `yaml:"players_dir"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// GameServerConfig points at the game server's Steam query port
type GameServerConfig struct {
	Address        string        `yaml:"address"`
	StatusCacheTTL time.Duration `yaml:"status_cache_ttl"`
	MaxPlayers     int           `yaml:"max_players"`
}

// LeaderboardConfig holds presentation thresholds
type LeaderboardConfig struct {
	MaintenanceMinPlayers int `yaml:"maintenance_min_players"`
	TopLimit              int `yaml:"top_limit"`
}

// ErrNoStatsSource is returned when neither stats source is configured
var ErrNoStatsSource = errors.New("stats: remote_dsn or players_dir must be set")

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Set defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = "127.0.0.1"
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/var/lib/survivor/survivor.db"
	}
	// Note: StaticDir intentionally has no default - empty means don't serve static files

	if cfg.Auth.TokenDuration == 0 {
		cfg.Auth.TokenDuration = 24 * time.Hour
	}

	if cfg.Stats.RemoteTable == "" {
		cfg.Stats.RemoteTable = "player_stats"
	}
	if cfg.Stats.QueryTimeout == 0 {
		cfg.Stats.QueryTimeout = 10 * time.Second
	}

	if cfg.GameServer.StatusCacheTTL == 0 {
		cfg.GameServer.StatusCacheTTL = 60 * time.Second
	}
	if cfg.GameServer.MaxPlayers == 0 {
		cfg.GameServer.MaxPlayers = 64
	}

	if cfg.Leaderboard.MaintenanceMinPlayers == 0 {
		cfg.Leaderboard.MaintenanceMinPlayers = 4
	}
	if cfg.Leaderboard.TopLimit == 0 {
		cfg.Leaderboard.TopLimit = 100
	}

	return &cfg, nil
}

// Validate checks settings that have no sensible default
func (c *Config) Validate() error {
	if c.Stats.RemoteDSN == "" && c.Stats.PlayersDir == "" {
		return ErrNoStatsSource
	}
	if c.Leaderboard.MaintenanceMinPlayers < 0 {
		return fmt.Errorf("leaderboard: maintenance_min_players must not be negative")
	}
	return nil
}
