package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every configurable value for the analyzer.
type Config struct {
	// Paths. LogDir is the MemoryWatch root written by the sampler; reports
	// are saved there too. DataDir holds the structured store.
	LogDir          string
	DataDir         string
	DBPath          string // sqlite file maintained by the sampler
	PreferencesPath string // notification preferences JSON

	LogLevel string // debug|info|warn|error
}

// Load reads configuration from (in decreasing priority):
//  1. environment variables (e.g. LOGLEVEL, DBPATH)
//  2. a yaml file (./configs/config.yaml) if it exists
//  3. built-in defaults rooted at ~/MemoryWatch.
//
// It returns a fully populated *Config or an error.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	logDir := filepath.Join(home, "MemoryWatch")
	dataDir := filepath.Join(logDir, "data")

	v := viper.New()

	v.SetDefault("LogDir", logDir)
	v.SetDefault("DataDir", dataDir)
	v.SetDefault("DBPath", filepath.Join(dataDir, "memorywatch.sqlite"))
	v.SetDefault("PreferencesPath", filepath.Join(dataDir, "notification_preferences.json"))
	v.SetDefault("LogLevel", "info")

	// Environment variables - Viper automatically maps "_" to "." (case-insensitive)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Optional yaml file - useful for pointing the analyzer at another machine's logs
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // ignore error - file is optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	if cfg.LogDir == "" {
		return nil, fmt.Errorf("LogDir must not be empty")
	}

	return &cfg, nil
}

// MemoryLogPath is the flat-file fallback for process samples.
func (c *Config) MemoryLogPath() string { return filepath.Join(c.LogDir, "memory_log.csv") }

// SwapLogPath is the flat-file fallback for swap snapshots.
func (c *Config) SwapLogPath() string { return filepath.Join(c.LogDir, "swap_history.csv") }

// LeakLogPath is the legacy free-text leak log.
func (c *Config) LeakLogPath() string { return filepath.Join(c.LogDir, "memory_leaks.log") }
