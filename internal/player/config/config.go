// Package config provides configuration management for the player agent
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the player configuration
type Config struct {
	// Server is the provider base URL
	Server string `mapstructure:"server"`
	// TerminalID identifies this screen to the provider; a UUID or the
	// terminal's internal name
	TerminalID string `mapstructure:"terminal-id"`
	// DataDir holds the persisted offline state
	DataDir string `mapstructure:"data-dir"`
	// CacheDir holds materialized image assets
	CacheDir string `mapstructure:"cache-dir"`
	// LogLevel is a zerolog level name (debug, info, warn, error)
	LogLevel string `mapstructure:"log-level"`
	// RefreshInterval drives the fetch-and-resolve cycle
	RefreshInterval time.Duration `mapstructure:"refresh-interval"`
	// TickInterval drives resolve-only re-evaluation
	TickInterval time.Duration `mapstructure:"tick-interval"`
	// ControlChannel enables the websocket listener for refresh nudges
	ControlChannel bool `mapstructure:"control-channel"`
	// Weather enables the conditions widget when the terminal has coordinates
	Weather bool `mapstructure:"weather"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pantalla-player"
	}
	return filepath.Join(home, ".pantalla-player")
}

// Load reads configuration from the given file (or the default location),
// overlaid with PANTALLA_PLAYER_* environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	dataDir := defaultDataDir()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("data-dir", filepath.Join(dataDir, "state"))
	v.SetDefault("cache-dir", filepath.Join(dataDir, "cache"))
	v.SetDefault("log-level", "info")
	v.SetDefault("refresh-interval", 5*time.Minute)
	v.SetDefault("tick-interval", 30*time.Second)
	v.SetDefault("control-channel", true)
	v.SetDefault("weather", true)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dataDir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PANTALLA_PLAYER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// No config file is fine; defaults, env, and flags cover everything
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the fields every player command needs
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.TerminalID == "" {
		return fmt.Errorf("terminal ID is required")
	}
	return nil
}
