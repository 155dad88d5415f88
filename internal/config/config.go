// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

// Package config holds loopctl's layered configuration: built-in defaults,
// an optional YAML file, and environment variables, highest priority last.
package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for a loopctl process.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Auth    AuthConfig    `koanf:"auth"`
	Live    LiveConfig    `koanf:"live"`
	Status  StatusConfig  `koanf:"status"`
	Logging LoggingConfig `koanf:"logging"`
}

// APIConfig configures the Loop.in REST client.
type APIConfig struct {
	// BaseURL is the backend root, e.g. https://api.loop-in.example.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Timeout applies per request.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit caps outbound requests per second. 0 disables the limiter.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`

	// RateBurst is the limiter burst size when RateLimit is set.
	RateBurst int `koanf:"rate_burst" validate:"gte=0"`
}

// AuthConfig configures credentials. The identity provider owns token
// issuance; loopctl only consumes tokens.
type AuthConfig struct {
	// IDToken is a static provider-issued bearer token.
	IDToken string `koanf:"id_token"`

	// IDTokenFile points at a file holding the provider token. The file is
	// re-read whenever the current token goes stale, so an external agent
	// can rotate it in place.
	IDTokenFile string `koanf:"id_token_file"`

	// AdminTokenPath is where the elevated (admin) credential is persisted.
	// A single token under a fixed key, cleared on admin logout.
	AdminTokenPath string `koanf:"admin_token_path"`
}

// LiveConfig configures the WebSocket notification channel.
type LiveConfig struct {
	// URL overrides the live endpoint. Empty derives ws(s)://{api}/notifications/ws.
	URL string `koanf:"url" validate:"omitempty,url"`

	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
	ReadTimeout      time.Duration `koanf:"read_timeout"`
	PingInterval     time.Duration `koanf:"ping_interval"`
}

// StatusConfig configures the local status/debug HTTP endpoint.
type StatusConfig struct {
	Enabled    bool   `koanf:"enabled"`
	ListenAddr string `koanf:"listen_addr"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// defaultConfig returns a Config with all defaults applied. These are
// overridden by the config file and then by environment variables.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:8000",
			Timeout:   30 * time.Second,
			RateLimit: 10,
			RateBurst: 20,
		},
		Auth: AuthConfig{
			AdminTokenPath: "/data/loopctl/admin_token",
		},
		Live: LiveConfig{
			HandshakeTimeout: 10 * time.Second,
			ReadTimeout:      60 * time.Second,
			PingInterval:     30 * time.Second,
		},
		Status: StatusConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1:7777",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for structural errors plus cross-field
// constraints the tag language cannot express.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Auth.IDToken != "" && c.Auth.IDTokenFile != "" {
		return fmt.Errorf("auth.id_token and auth.id_token_file are mutually exclusive")
	}

	if c.Live.URL != "" {
		u, err := url.Parse(c.Live.URL)
		if err != nil {
			return fmt.Errorf("invalid live.url: %w", err)
		}
		switch u.Scheme {
		case "ws", "wss":
		default:
			return fmt.Errorf("live.url must use ws or wss scheme, got %q", u.Scheme)
		}
	}

	return nil
}
