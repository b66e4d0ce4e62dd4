package server

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration. Values come from the
// HCL file, then DICEDUEL_* environment variables, then CLI flags.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains the network-facing options.
type ServerSettings struct {
	Address  string `hcl:"address,optional" env:"DICEDUEL_ADDRESS"`
	Port     int    `hcl:"port,optional" env:"DICEDUEL_PORT"`
	LogLevel string `hcl:"log_level,optional" env:"DICEDUEL_LOG_LEVEL"`
}

// GameSettings contains dice seeding and room lifecycle options. TTL
// and sweep interval are in seconds.
type GameSettings struct {
	Seed          int64 `hcl:"seed,optional" env:"DICEDUEL_SEED"`
	RoomTTL       int   `hcl:"room_ttl,optional" env:"DICEDUEL_ROOM_TTL"`
	SweepInterval int   `hcl:"sweep_interval,optional" env:"DICEDUEL_SWEEP_INTERVAL"`
}

// fileConfig mirrors Config with optional blocks, so a config file may
// omit either block entirely.
type fileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

// DefaultConfig returns the server defaults: listen on localhost:8080,
// time-seeded dice, 30 minute room TTL swept every 5 minutes.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			Seed:          0,
			RoomTTL:       1800,
			SweepInterval: 300,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist, then applies environment
// overrides.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}

		var parsed fileConfig
		diags = gohcl.DecodeBody(file.Body, nil, &parsed)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
		applyFileConfig(config, &parsed)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	return config, nil
}

func applyFileConfig(config *Config, parsed *fileConfig) {
	if parsed.Server != nil {
		if parsed.Server.Address != "" {
			config.Server.Address = parsed.Server.Address
		}
		if parsed.Server.Port != 0 {
			config.Server.Port = parsed.Server.Port
		}
		if parsed.Server.LogLevel != "" {
			config.Server.LogLevel = parsed.Server.LogLevel
		}
	}
	if parsed.Game != nil {
		if parsed.Game.Seed != 0 {
			config.Game.Seed = parsed.Game.Seed
		}
		if parsed.Game.RoomTTL != 0 {
			config.Game.RoomTTL = parsed.Game.RoomTTL
		}
		if parsed.Game.SweepInterval != 0 {
			config.Game.SweepInterval = parsed.Game.SweepInterval
		}
	}
}

// Validate validates the server configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	if c.Game.RoomTTL <= 0 {
		return fmt.Errorf("room_ttl must be positive, got %d", c.Game.RoomTTL)
	}
	if c.Game.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %d", c.Game.SweepInterval)
	}
	return nil
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomTTL returns the idle-room lifetime as a duration.
func (c *Config) RoomTTL() time.Duration {
	return time.Duration(c.Game.RoomTTL) * time.Second
}

// SweepInterval returns the sweeper period as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Game.SweepInterval) * time.Second
}
