package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

// RedisConfig configures the conversation persistence hook.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EngineConfig holds the classification knobs.
type EngineConfig struct {
	AcceptanceThreshold float64       // primary path minimum confidence
	Timeout             time.Duration // whole pipeline incl. cascade
	MemoryTTL           time.Duration // redis hook expiry, 0 = none
}

// UnmarshalYAML parses the duration knobs from "5s"/"168h" style strings,
// which yaml.v3 does not decode into time.Duration on its own.
func (e *EngineConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		AcceptanceThreshold float64 `yaml:"acceptanceThreshold"`
		Timeout             string  `yaml:"timeout"`
		MemoryTTL           string  `yaml:"memoryTtl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	e.AcceptanceThreshold = raw.AcceptanceThreshold
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid engine timeout %q: %w", raw.Timeout, err)
		}
		e.Timeout = d
	}
	if raw.MemoryTTL != "" {
		d, err := time.ParseDuration(raw.MemoryTTL)
		if err != nil {
			return fmt.Errorf("invalid engine memoryTtl %q: %w", raw.MemoryTTL, err)
		}
		e.MemoryTTL = d
	}
	return nil
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// LoadConfig reads and parses a yaml config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a config with sane defaults, for tools that run without a
// config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Name == "" {
		c.Server.Name = "cobrancabot"
	}
	if c.Engine.AcceptanceThreshold == 0 {
		c.Engine.AcceptanceThreshold = 0.45
	}
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
