package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Config holds all configuration for the application
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GameConfig holds game mechanics configuration
type GameConfig struct {
	Map   MapConfig   `mapstructure:"map"`
	Rules RulesConfig `mapstructure:"rules"`
	Match MatchConfig `mapstructure:"match"`
}

// MapConfig holds half map generation settings
type MapConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	Grass  int `mapstructure:"grass"`
	Water  int `mapstructure:"water"`
	Forts  int `mapstructure:"forts"`
}

// RulesConfig holds the half map validation thresholds
type RulesConfig struct {
	MinGrass               int `mapstructure:"min_grass"`
	MinMountain            int `mapstructure:"min_mountain"`
	MinWater               int `mapstructure:"min_water"`
	MinForts               int `mapstructure:"min_forts"`
	MinEdgeWalkablePercent int `mapstructure:"min_edge_walkable_percent"`
}

// MatchConfig holds match refereeing settings
type MatchConfig struct {
	MaxTurns int `mapstructure:"max_turns"`
}

// AgentConfig holds move planner settings
type AgentConfig struct {
	FrontierGrassThreshold int `mapstructure:"frontier_grass_threshold"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	GRPCServer GRPCServerConfig `mapstructure:"grpc_server"`
}

// GRPCServerConfig holds gRPC server configuration
type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	MaxGames              int    `mapstructure:"max_games"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// LoggingConfig holds the process wide logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Half map generation
	v.SetDefault("game.map.width", 10)
	v.SetDefault("game.map.height", 5)
	v.SetDefault("game.map.grass", 26)
	v.SetDefault("game.map.water", 7)
	v.SetDefault("game.map.forts", 1)

	// Half map validation
	v.SetDefault("game.rules.min_grass", 24)
	v.SetDefault("game.rules.min_mountain", 5)
	v.SetDefault("game.rules.min_water", 7)
	v.SetDefault("game.rules.min_forts", 1)
	v.SetDefault("game.rules.min_edge_walkable_percent", 51)

	// Match
	v.SetDefault("game.match.max_turns", 320)

	// Agent
	v.SetDefault("agent.frontier_grass_threshold", 3)

	// gRPC server defaults
	v.SetDefault("server.grpc_server.host", "0.0.0.0")
	v.SetDefault("server.grpc_server.port", 50051)
	v.SetDefault("server.grpc_server.log_level", "info")
	v.SetDefault("server.grpc_server.max_games", 99)
	v.SetDefault("server.grpc_server.enable_reflection", true)
	v.SetDefault("server.grpc_server.graceful_shutdown_delay", 5)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/treasurehunt")
	}

	// TH_GAME_MATCH_MAX_TURNS overrides game.match.max_turns
	v.SetEnvPrefix("TH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing explicit file falls back to defaults as well
		if configPath == "" && !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml from the directory of the
// loaded config file, or the working directory, over the current values.
// A missing overlay is not an error.
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	base := v.ConfigFileUsed()
	envFile := fmt.Sprintf("config.%s.yaml", env)
	if base != "" {
		envFile = filepath.Join(filepath.Dir(base), envFile)
	}
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	prev := v.AllSettings()
	v.SetConfigFile(envFile)
	err := v.MergeInConfig()
	if base != "" {
		// Keep watching the base file
		v.SetConfigFile(base)
	}
	if err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	next := &Config{}
	err = v.Unmarshal(next)
	if err == nil {
		err = Validate(next)
	}
	if err != nil {
		_ = v.MergeConfigMap(prev)
		return fmt.Errorf("environment config %s: %w", envFile, err)
	}
	*cfg = *next
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. onChange receives the
// reload error, if any; an invalid file keeps the previous values.
func WatchConfig(onChange func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := v.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err == nil {
			*cfg = *next
		}
		if onChange != nil {
			onChange(err)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	m := c.Game.Map
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("game.map dimensions must be positive")
	}
	if m.Grass < 0 || m.Water < 0 || m.Forts < 1 {
		return fmt.Errorf("game.map placement counts must be non-negative with at least one fort")
	}
	if m.Grass+m.Water+m.Forts > m.Width*m.Height {
		return fmt.Errorf("game.map placement counts exceed %d cells", m.Width*m.Height)
	}
	// Assembly joins two halves of exactly this size, each with one fort
	if m.Width != core.HalfMapWidth || m.Height != core.HalfMapHeight {
		return fmt.Errorf("game.map dimensions must be %dx%d, got %dx%d",
			core.HalfMapWidth, core.HalfMapHeight, m.Width, m.Height)
	}
	if m.Forts != 1 {
		return fmt.Errorf("game.map.forts must be 1, got %d", m.Forts)
	}

	r := c.Game.Rules
	if r.MinGrass < 0 || r.MinMountain < 0 || r.MinWater < 0 || r.MinForts < 1 {
		return fmt.Errorf("game.rules minima must be non-negative with at least one fort")
	}

	// Placement counts must satisfy the terrain rules
	mountains := m.Width*m.Height - m.Grass - m.Water - m.Forts
	if m.Forts < r.MinForts {
		return fmt.Errorf("game.map.forts %d is below game.rules.min_forts %d", m.Forts, r.MinForts)
	}
	if m.Grass+m.Forts < r.MinGrass {
		return fmt.Errorf("game.map grass and forts %d are below game.rules.min_grass %d", m.Grass+m.Forts, r.MinGrass)
	}
	if m.Water < r.MinWater {
		return fmt.Errorf("game.map.water %d is below game.rules.min_water %d", m.Water, r.MinWater)
	}
	if mountains < r.MinMountain {
		return fmt.Errorf("game.map leaves %d mountains, below game.rules.min_mountain %d", mountains, r.MinMountain)
	}
	if r.MinEdgeWalkablePercent < 0 || r.MinEdgeWalkablePercent > 100 {
		return fmt.Errorf("game.rules.min_edge_walkable_percent must be between 0 and 100")
	}

	if c.Game.Match.MaxTurns <= 0 {
		return fmt.Errorf("game.match.max_turns must be positive")
	}
	if c.Agent.FrontierGrassThreshold < 1 || c.Agent.FrontierGrassThreshold > 8 {
		return fmt.Errorf("agent.frontier_grass_threshold must be between 1 and 8")
	}

	s := c.Server.GRPCServer
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("server.grpc_server.port must be between 1 and 65535")
	}
	if s.MaxGames <= 0 {
		return fmt.Errorf("server.grpc_server.max_games must be positive")
	}
	if s.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc_server.graceful_shutdown_delay must be non-negative")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	return nil
}
