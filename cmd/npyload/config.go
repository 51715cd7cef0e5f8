package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfigPath = "NPYLOAD_CONFIG"

// Config represents the npyload configuration file
// (~/.config/npyload/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// inspect
	Rows    *int   `yaml:"rows"`
	Workers *int   `yaml:"workers"`
	Format  string `yaml:"format"`

	// serve
	ServerAddress string `yaml:"server_address"`
	MaxBodyBytes  *int64 `yaml:"max_body_bytes"`
	StoreLimit    *int   `yaml:"store_limit"`
}

func configPath(flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(envConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "npyload", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config; a
// file that exists but does not parse is an error.
func LoadConfig(flagPath string) (Config, error) {
	path := configPath(flagPath)
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config, level, format *string) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		*format = cfg.LogFormat
	}
}

// applyInspectConfig applies config file defaults to inspect flags that were
// not set explicitly.
func applyInspectConfig(c *cli.Command, cfg Config, rows, workers *int, format *string) {
	if cfg.Rows != nil && !c.IsSet("rows") {
		*rows = *cfg.Rows
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		*workers = *cfg.Workers
	}
	if cfg.Format != "" && !c.IsSet("format") {
		*format = cfg.Format
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxBody *int64, storeLimit *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxBodyBytes != nil && !c.IsSet("max-body") {
		*maxBody = *cfg.MaxBodyBytes
	}
	if cfg.StoreLimit != nil && !c.IsSet("store-limit") {
		*storeLimit = *cfg.StoreLimit
	}
}
