// Package config handles whiteboard service configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Writeback WritebackConfig `yaml:"writeback"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	SecureCookies   bool          `yaml:"secure_cookies"`
}

// DatabaseConfig names the SQLite files.
type DatabaseConfig struct {
	Path              string `yaml:"path"`
	ObservabilityPath string `yaml:"observability_path"`
}

// AuthConfig controls token issuance. Secret is read from the named
// environment variable, never from the file itself.
type AuthConfig struct {
	SecretEnv string        `yaml:"secret_env"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// RealtimeConfig tunes the websocket layer.
type RealtimeConfig struct {
	SendBuffer   int           `yaml:"send_buffer"`
	PingInterval time.Duration `yaml:"ping_interval"`
	PongTimeout  time.Duration `yaml:"pong_timeout"`
	MaxMessage   int64         `yaml:"max_message"`
}

// WritebackConfig tunes the spline persistence worker.
type WritebackConfig struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	VisibilityTimeout time.Duration `yaml:"visibility_timeout"`
	MaxAttempts       int           `yaml:"max_attempts"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | text
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when
// no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Secret resolves the token signing secret from the environment.
func (c *Config) Secret() (string, error) {
	secret := os.Getenv(c.Auth.SecretEnv)
	if secret == "" {
		return "", fmt.Errorf("config: %s is not set", c.Auth.SecretEnv)
	}
	return secret, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8372"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Path == "" {
		c.Database.Path = "nowte.db"
	}
	if c.Database.ObservabilityPath == "" {
		c.Database.ObservabilityPath = "nowte-observability.db"
	}
	if c.Auth.SecretEnv == "" {
		c.Auth.SecretEnv = "NOWTE_TOKEN_SECRET"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Realtime.SendBuffer <= 0 {
		c.Realtime.SendBuffer = 64
	}
	if c.Realtime.PingInterval <= 0 {
		c.Realtime.PingInterval = 30 * time.Second
	}
	if c.Realtime.PongTimeout <= 0 {
		c.Realtime.PongTimeout = 60 * time.Second
	}
	if c.Realtime.MaxMessage <= 0 {
		c.Realtime.MaxMessage = 256 << 10
	}
	if c.Writeback.PollInterval <= 0 {
		c.Writeback.PollInterval = 200 * time.Millisecond
	}
	if c.Writeback.VisibilityTimeout <= 0 {
		c.Writeback.VisibilityTimeout = 30 * time.Second
	}
	if c.Writeback.MaxAttempts <= 0 {
		c.Writeback.MaxAttempts = 5
	}
	if c.Writeback.HeartbeatInterval <= 0 {
		c.Writeback.HeartbeatInterval = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}
