// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"loopctl.yaml",
	"loopctl.yml",
	"/etc/loopctl/config.yaml",
	"/etc/loopctl/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "LOOPCTL_CONFIG"

// Load builds the configuration from layered sources, lowest priority first:
//
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
//
// The result is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or empty.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings routes recognized environment variables to config paths.
// Unrecognized variables are dropped so unrelated process environment
// never leaks into the configuration.
var envMappings = map[string]string{
	"api_base_url":       "api.base_url",
	"api_timeout":        "api.timeout",
	"api_rate_limit":     "api.rate_limit",
	"api_rate_burst":     "api.rate_burst",
	"auth_id_token":      "auth.id_token",
	"auth_id_token_file": "auth.id_token_file",
	"admin_token_path":   "auth.admin_token_path",
	"live_url":           "live.url",
	"live_ping_interval": "live.ping_interval",
	"live_read_timeout":  "live.read_timeout",
	"status_enabled":     "status.enabled",
	"status_listen_addr": "status.listen_addr",
	"log_level":          "logging.level",
	"log_format":         "logging.format",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
//	API_BASE_URL -> api.base_url
//	LOG_LEVEL    -> logging.level
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
