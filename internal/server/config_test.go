package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diceduel-server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", config.Addr())
	assert.Equal(t, "info", config.Server.LogLevel)
	assert.Equal(t, int64(0), config.Game.Seed)
	assert.Equal(t, 30*time.Minute, config.RoomTTL())
	assert.Equal(t, 5*time.Minute, config.SweepInterval())
	require.NoError(t, config.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

game {
  seed           = 42
  room_ttl       = 600
  sweep_interval = 60
}
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", config.Addr())
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, int64(42), config.Game.Seed)
	assert.Equal(t, 10*time.Minute, config.RoomTTL())
	assert.Equal(t, time.Minute, config.SweepInterval())
}

func TestLoadConfigPartialFile(t *testing.T) {
	// A file may set just one block; everything else keeps its default.
	path := writeConfigFile(t, `
server {
  port = 9000
}
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", config.Addr())
	assert.Equal(t, "info", config.Server.LogLevel)
	assert.Equal(t, 30*time.Minute, config.RoomTTL())
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := writeConfigFile(t, `server { port = `)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server {
  port = 9000
}
`)
	t.Setenv("DICEDUEL_PORT", "9100")
	t.Setenv("DICEDUEL_LOG_LEVEL", "warn")
	t.Setenv("DICEDUEL_ROOM_TTL", "120")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	// Environment beats the file, which beats the defaults.
	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, "warn", config.Server.LogLevel)
	assert.Equal(t, 2*time.Minute, config.RoomTTL())
	assert.Equal(t, "localhost", config.Server.Address)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Server.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "zero room ttl",
			mutate:  func(c *Config) { c.Game.RoomTTL = 0 },
			wantErr: "room_ttl",
		},
		{
			name:    "negative sweep interval",
			mutate:  func(c *Config) { c.Game.SweepInterval = -1 },
			wantErr: "sweep_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
