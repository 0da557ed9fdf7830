package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	cfg = nil
	v = nil
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  map:
    grass: 28
  rules:
    min_water: 6
  match:
    max_turns: 200
agent:
  frontier_grass_threshold: 4
server:
  grpc_server:
    port: 8080
    max_games: 10
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	reset()
	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 28, c.Game.Map.Grass)
	assert.Equal(t, 7, c.Game.Map.Water, "unset keys keep their defaults")
	assert.Equal(t, 6, c.Game.Rules.MinWater)
	assert.Equal(t, 200, c.Game.Match.MaxTurns)
	assert.Equal(t, 4, c.Agent.FrontierGrassThreshold)
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, 10, c.Server.GRPCServer.MaxGames)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	reset()

	// A missing explicit file falls back to defaults
	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	assert.Equal(t, MapConfig{Width: 10, Height: 5, Grass: 26, Water: 7, Forts: 1}, c.Game.Map)
	assert.Equal(t, RulesConfig{MinGrass: 24, MinMountain: 5, MinWater: 7, MinForts: 1, MinEdgeWalkablePercent: 51}, c.Game.Rules)
	assert.Equal(t, 320, c.Game.Match.MaxTurns)
	assert.Equal(t, 3, c.Agent.FrontierGrassThreshold)
	assert.Equal(t, 99, c.Server.GRPCServer.MaxGames)
	assert.Equal(t, "console", c.Logging.Format)
}

func TestInitRejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("game:\n  match:\n    max_turns: 0\n"), 0644))

	reset()
	err := Init(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.match.max_turns")
}

func TestEnvironmentVariables(t *testing.T) {
	reset()

	t.Setenv("TH_GAME_MATCH_MAX_TURNS", "100")
	t.Setenv("TH_SERVER_GRPC_SERVER_PORT", "9090")

	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, 100, c.Game.Match.MaxTurns)
	assert.Equal(t, 9090, c.Server.GRPCServer.Port)
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	baseContent := `
game:
  match:
    max_turns: 320
server:
  grpc_server:
    port: 50051
`
	require.NoError(t, os.WriteFile(baseConfig, []byte(baseContent), 0644))

	envConfig := filepath.Join(tmpDir, "config.prod.yaml")
	envContent := `
game:
  match:
    max_turns: 400
server:
  grpc_server:
    port: 8080
    log_level: "error"
`
	require.NoError(t, os.WriteFile(envConfig, []byte(envContent), 0644))

	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	reset()
	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	c := Get()
	assert.Equal(t, 400, c.Game.Match.MaxTurns)
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, "error", c.Server.GRPCServer.LogLevel)
}

func TestLoadEnvironmentConfig_MissingOrInvalidOverlay(t *testing.T) {
	tmpDir := t.TempDir()
	baseConfig := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(baseConfig, []byte("game:\n  match:\n    max_turns: 250\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.broken.yaml"),
		[]byte("game:\n  map:\n    water: 5\n"), 0644))

	reset()
	require.NoError(t, Init(baseConfig))

	require.NoError(t, LoadEnvironmentConfig("staging"), "a missing overlay is skipped")
	assert.Equal(t, 250, Get().Game.Match.MaxTurns)

	err := LoadEnvironmentConfig("broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_water")
	assert.Equal(t, 7, Get().Game.Map.Water, "a rejected overlay keeps the previous values")
	assert.Equal(t, baseConfig, ConfigFilePath())
}

func TestValidate(t *testing.T) {
	reset()
	require.NoError(t, Init(""))
	base := *Get()

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"zero width", func(c *Config) { c.Game.Map.Width = 0 }, "game.map dimensions"},
		{"no forts", func(c *Config) { c.Game.Map.Forts = 0 }, "game.map placement"},
		{"overfull", func(c *Config) { c.Game.Map.Grass = 60 }, "exceed 50 cells"},
		{"wide map", func(c *Config) { c.Game.Map.Width = 12 }, "must be 10x5"},
		{"tall map", func(c *Config) { c.Game.Map.Height = 6 }, "must be 10x5"},
		{"two forts", func(c *Config) { c.Game.Map.Forts = 2 }, "game.map.forts must be 1"},
		{"fort minimum unreachable", func(c *Config) { c.Game.Rules.MinForts = 2 }, "min_forts"},
		{"water below minimum", func(c *Config) { c.Game.Map.Water = 5 }, "min_water"},
		{"grass below minimum", func(c *Config) { c.Game.Map.Grass = 20 }, "min_grass"},
		{"too few mountains", func(c *Config) { c.Game.Map.Grass = 38 }, "min_mountain"},
		{"edge percent", func(c *Config) { c.Game.Rules.MinEdgeWalkablePercent = 120 }, "min_edge_walkable_percent"},
		{"threshold", func(c *Config) { c.Agent.FrontierGrassThreshold = 9 }, "frontier_grass_threshold"},
		{"port", func(c *Config) { c.Server.GRPCServer.Port = 70000 }, "port"},
		{"max games", func(c *Config) { c.Server.GRPCServer.MaxGames = 0 }, "max_games"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	require.NoError(t, Validate(&base))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := Validate(&c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
