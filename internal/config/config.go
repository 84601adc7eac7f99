// Package config loads buckettool settings from YAML, environment and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"buckettool/internal/logger"
	"buckettool/pkg/core"
)

// Config is the root configuration
type Config struct {
	Log     logger.Config `yaml:"log" mapstructure:"log"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Detect  DetectConfig  `yaml:"detect" mapstructure:"detect"`
	Scan    ScanConfig    `yaml:"scan" mapstructure:"scan"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
}

// HTTPConfig tunes the probe transport
type HTTPConfig struct {
	Timeout            time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxConnsPerHost    int           `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host"`
	UserAgent          string        `yaml:"user_agent" mapstructure:"user_agent"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// DetectConfig holds the default detection options
type DetectConfig struct {
	CheckACL    bool     `yaml:"check_acl" mapstructure:"check_acl"`
	CheckPolicy bool     `yaml:"check_policy" mapstructure:"check_policy"`
	Vendors     []string `yaml:"vendors,omitempty" mapstructure:"vendors"`
}

// ScanConfig controls batch and passive scanning
type ScanConfig struct {
	Threads   int      `yaml:"threads" mapstructure:"threads"`
	Output    string   `yaml:"output,omitempty" mapstructure:"output"`
	Blacklist []string `yaml:"blacklist,omitempty" mapstructure:"blacklist"`
}

type HistoryConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
	Mode string `yaml:"mode" mapstructure:"mode"` // debug/release/test
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: logger.Config{
			Level:      "warn",
			Format:     "text",
			Output:     "stderr",
			FilePath:   "./logs/buckettool.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		HTTP: HTTPConfig{
			Timeout:         10 * time.Second,
			MaxConnsPerHost: 512,
		},
		Detect: DetectConfig{
			CheckACL:    true,
			CheckPolicy: true,
		},
		Scan: ScanConfig{
			Threads: 10,
		},
		History: HistoryConfig{
			Path:    "./buckettool-history.json",
			Enabled: true,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8089,
			Mode: "release",
		},
	}
}

// Addr is the listen address of the API server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Engine converts the transport and scan settings into the engine configuration.
func (c *Config) Engine() *core.Config {
	return &core.Config{
		Threads:         c.Scan.Threads,
		Timeout:         c.HTTP.Timeout,
		MaxConnsPerHost: c.HTTP.MaxConnsPerHost,
		UserAgent:       c.HTTP.UserAgent,
		InsecureTLS:     c.HTTP.InsecureSkipVerify,
		Blacklist:       c.Scan.Blacklist,
	}
}

// Options builds detection options from the detect section. Vendor ids that
// are not recognised are returned separately.
func (c *Config) Options() (core.Options, []string) {
	vendors, dropped := core.ParseVendors(c.Detect.Vendors)
	return core.Options{
		CheckACL:    c.Detect.CheckACL,
		CheckPolicy: c.Detect.CheckPolicy,
		Vendors:     vendors,
	}, dropped
}

// Validate rejects settings the tool cannot run with.
func (c *Config) Validate() error {
	if c.Scan.Threads < 1 {
		return fmt.Errorf("invalid scan threads: %d", c.Scan.Threads)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "json", "text", "":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr", "file", "":
	default:
		return fmt.Errorf("invalid log output: %s", c.Log.Output)
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log file_path is required when output is file")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("invalid http timeout: %s", c.HTTP.Timeout)
	}
	return nil
}

// WriteFile writes c as YAML to path, creating parent directories. An existing
// file is only replaced when overwrite is set.
func (c *Config) WriteFile(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
