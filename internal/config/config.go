// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/broady/taskmaster/internal/taskcache"
)

// Default values.
const (
	DefaultHost      = ""
	DefaultPort      = 3001
	DefaultURL       = "http://localhost:3001"
	DefaultTimeout   = 10 * time.Second
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for taskmaster.
type Config struct {
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`

	// Path is the file the config was read from, if any.
	Path string `toml:"-"`
}

// ServerConfig configures `taskmaster serve`.
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	LogLevel           string   `toml:"log_level"`
	LogFormat          string   `toml:"log_format"` // text or json
	CORSOrigins        []string `toml:"cors_origins"`
	MaskInternalErrors bool     `toml:"mask_internal_errors"`
	Seed               bool     `toml:"seed"` // start with the example tasks
}

// ClientConfig configures the TUI and the one-shot commands.
type ClientConfig struct {
	URL           string        `toml:"url"`
	Timeout       time.Duration `toml:"timeout"`
	ToggleFailure string        `toml:"toggle_failure"` // keep, rollback or refetch
}

// Addr returns the listen address, e.g. ":3001".
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ToggleFailurePolicy parses ToggleFailure.
func (c ClientConfig) ToggleFailurePolicy() (taskcache.ToggleFailurePolicy, error) {
	return taskcache.ParseToggleFailurePolicy(c.ToggleFailure)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      DefaultHost,
			Port:      DefaultPort,
			LogLevel:  DefaultLogLevel,
			LogFormat: DefaultLogFormat,
			Seed:      true,
		},
		Client: ClientConfig{
			URL:           DefaultURL,
			Timeout:       DefaultTimeout,
			ToggleFailure: string(taskcache.DefaultToggleFailurePolicy),
		},
	}
}

// Load builds the configuration from, in increasing priority:
//  1. Defaults
//  2. Config file (TOML): path, or DefaultPath() when path is empty
//  3. Environment variables, read through getenv
//
// CLI flags are applied on top by the caller. A missing file is only an error
// when path was given explicitly.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath(getenv)
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			cfg.Path = path
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("loading config file %s: unknown keys %v", path, undecoded)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/taskmaster/config.toml, falling back
// to ~/.config. It returns "" when no home directory is known.
func DefaultPath(getenv func(string) string) string {
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "taskmaster", "config.toml")
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "taskmaster", "config.toml")
	}
	return ""
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := getenv("TASKMASTER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := getenv("TASKMASTER_URL"); v != "" {
		cfg.Client.URL = v
	}
	if v := getenv("TASKMASTER_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := getenv("TASKMASTER_LOG_FORMAT"); v != "" {
		cfg.Server.LogFormat = v
	}
	if v := getenv("TASKMASTER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitAndTrim(v, ",")
	}
	if v := getenv("TASKMASTER_TOGGLE_FAILURE"); v != "" {
		cfg.Client.ToggleFailure = v
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.Server.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("server.log_format %q: want text or json", c.Server.LogFormat)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout %s is negative", c.Client.Timeout)
	}
	if _, err := c.Client.ToggleFailurePolicy(); err != nil {
		return fmt.Errorf("client.toggle_failure: %w", err)
	}
	return nil
}

// splitAndTrim splits a string by sep and trims whitespace from each part.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
