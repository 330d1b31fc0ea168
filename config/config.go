// Package config holds the simulator's configuration, loaded from YAML or
// JSON files plus a .env overlay for secrets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete simulator configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Market     MarketConfig     `json:"market" yaml:"market"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Advisor    AdvisorConfig    `json:"advisor" yaml:"advisor"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	Capital float64 `json:"capital" yaml:"capital"`
}

// MarketConfig tunes the synthetic price feed
type MarketConfig struct {
	Volatility float64 `json:"volatility" yaml:"volatility"`
	Window     int     `json:"window" yaml:"window"`
	Seed       int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// SimulationConfig contains the tick cadence
type SimulationConfig struct {
	Interval string `json:"interval" yaml:"interval"` // e.g. "1500ms", "2s"
}

// ParseInterval converts the interval string to a time.Duration
func (sc SimulationConfig) ParseInterval() (time.Duration, error) {
	if sc.Interval == "" {
		return 1500 * time.Millisecond, nil
	}
	return time.ParseDuration(sc.Interval)
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ServerConfig contains the HTTP/websocket listener parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// AdvisorConfig contains the AI commentary parameters. The API key is never
// read from config files; it comes from the environment (see LoadEnv).
type AdvisorConfig struct {
	Model  string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey string `json:"-" yaml:"-"`
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Default returns a configuration that runs out of the box.
func Default() *Config {
	return &Config{
		Account:    AccountConfig{Capital: 100_000},
		Market:     MarketConfig{Volatility: 0.002, Window: 50},
		Simulation: SimulationConfig{Interval: "1500ms"},
		Journal:    JournalConfig{Type: "sqlite", DBPath: "niftymoney.db"},
		Server:     ServerConfig{Addr: ":8086"},
		Log:        LogConfig{Level: "info"},
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnv overlays secrets from the environment, reading an optional .env
// file first. A missing .env is not an error.
func (c *Config) LoadEnv(envFile string) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Advisor.APIKey = key
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Capital <= 0 {
		return fmt.Errorf("account.capital must be positive")
	}
	if c.Market.Volatility < 0 {
		return fmt.Errorf("market.volatility must not be negative")
	}
	if c.Market.Window < 2 {
		return fmt.Errorf("market.window must be at least 2")
	}
	if _, err := c.Simulation.ParseInterval(); err != nil {
		return fmt.Errorf("simulation.interval: %w", err)
	}
	switch c.Journal.Type {
	case "", "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path is required for sqlite journal")
		}
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal.fills_file and journal.equity_file are required for csv journal")
		}
	default:
		return fmt.Errorf("journal.type must be csv, sqlite or none")
	}
	return nil
}
