package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Search  SearchConfig  `mapstructure:"search"`
	Player  PlayerConfig  `mapstructure:"player"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds remote API configuration
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`   // PokeAPI base URL
	PageLimit int    `mapstructure:"page_limit"` // Items per list page
	FullLimit int    `mapstructure:"full_limit"` // Page size for a forced full refresh
}

// CacheConfig holds persistent cache configuration
type CacheConfig struct {
	Dir        string `mapstructure:"dir"`         // Cache directory, empty for the OS default
	TTLMinutes int    `mapstructure:"ttl_minutes"` // 0 disables expiry
}

// SearchConfig holds search projection configuration
type SearchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"` // Query quiet period in milliseconds
}

// PlayerConfig holds the external audio player used for cry playback
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://pokeapi.co/api/v2",
			PageLimit: 20,
			FullLimit: 2000,
		},
		Cache: CacheConfig{
			Dir:        defaultCachePath(),
			TTLMinutes: 0,
		},
		Search: SearchConfig{
			DebounceMS: 350,
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dexterm", "dexterm.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "dexterm", "dexterm.log")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "dexterm", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "dexterm", "cache")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dexterm")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "dexterm")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("DEXTERM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// First run: write the defaults so there is a file to edit.
		// Best effort; a read-only config dir just means no file.
		_ = SaveConfig(cfg)
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the current configuration to the default config file
func SaveConfig(cfg *Config) error {
	return writeConfigFile(cfg, defaultConfigPath())
}

// writeConfigFile writes cfg as config.yaml under dir. A fresh viper
// instance keeps the write from leaking values into the global one.
func writeConfigFile(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.page_limit", cfg.API.PageLimit)
	v.Set("api.full_limit", cfg.API.FullLimit)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.ttl_minutes", cfg.Cache.TTLMinutes)
	v.Set("search.debounce_ms", cfg.Search.DebounceMS)
	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(filepath.Join(dir, "config.yaml")); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
