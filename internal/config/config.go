package config

import (
	"fmt"
	"os"

	"github.com/gravitas-015/hexward/pkg/hex"
	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	JWT    JWTConfig    `yaml:"jwt"`
	Redis  RedisConfig  `yaml:"redis"`
	Grid   GridConfig   `yaml:"grid"`
	Query  QueryConfig  `yaml:"query"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
}

// GridConfig describes the shared hex map
type GridConfig struct {
	Radius      int             `yaml:"radius"`
	Orientation hex.Orientation `yaml:"orientation"` // "pointy_top" or "flat_top"
	CellSize    float64         `yaml:"cell_size"`   // pixels, center to corner
	FillTerrain string          `yaml:"fill_terrain"`
}

// QueryConfig limits what a single connection may ask for
type QueryConfig struct {
	RateLimit float64 `yaml:"rate_limit"` // messages per second
	Burst     int     `yaml:"burst"`
	MaxRadius int     `yaml:"max_radius"` // largest range/ring radius served
}

const defaultGridRadius = 10

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults
func Parse(data []byte) (*Config, error) {
	// radius 0 is a valid single-cell map; the default goes in before decoding
	cfg := Config{Grid: GridConfig{Radius: defaultGridRadius}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "blacklist:"
	}
	if cfg.Grid.CellSize == 0 {
		cfg.Grid.CellSize = 32
	}
	if cfg.Query.RateLimit == 0 {
		cfg.Query.RateLimit = 20
	}
	if cfg.Query.Burst == 0 {
		cfg.Query.Burst = 40
	}
	if cfg.Query.MaxRadius == 0 {
		cfg.Query.MaxRadius = 16
	}

	if cfg.Grid.Radius < 0 {
		return nil, fmt.Errorf("grid radius must be non-negative, got %d", cfg.Grid.Radius)
	}
	if cfg.Grid.CellSize < 0 {
		return nil, fmt.Errorf("grid cell size must be positive, got %v", cfg.Grid.CellSize)
	}

	return &cfg, nil
}
