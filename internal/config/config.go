// Package config loads runtime settings from the environment.
//
// Every setting has a default so `portfolio serve` works out of the box
// against a local API. A .env file is loaded by main before Load runs.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const minSecretLength = 16

// Config is the fully resolved configuration.
type Config struct {
	Port          int
	APIBaseURL    string
	DBPath        string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	LogLevel      slog.Level
	LogFormat     string
	Site          Site

	// GeneratedSecret is true when SESSION_SECRET was empty and a random
	// one was generated. Sessions then do not survive a restart.
	GeneratedSecret bool
}

// Site is the public identity used for page titles and SEO meta tags.
type Site struct {
	Name        string
	URL         string
	Author      string
	Description string
}

// Load reads the environment and validates the result.
func Load() (cfg Config, err error) {
	cfg = Config{
		Port:       8080,
		APIBaseURL: envOr("API_URL", "http://localhost:5000/api"),
		DBPath:     envOr("DB_PATH", "data/portfolio.db"),
		SessionTTL: 30 * 24 * time.Hour,
		LogLevel:   slog.LevelInfo,
		LogFormat:  strings.ToLower(envOr("LOG_FORMAT", "text")),
		Site: Site{
			Name:        envOr("SITE_NAME", "Portfolio"),
			URL:         strings.TrimRight(envOr("SITE_URL", "http://localhost:8080"), "/"),
			Author:      envOr("SITE_AUTHOR", ""),
			Description: envOr("SITE_DESCRIPTION", "Projects, writing and experience."),
		},
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port, err = strconv.Atoi(v)
		if err != nil {
			err = errors.Wrapf(err, "invalid PORT %q", v)
			return cfg, err
		}
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		cfg.SessionTTL, err = time.ParseDuration(v)
		if err != nil {
			err = errors.Wrapf(err, "invalid SESSION_TTL %q", v)
			return cfg, err
		}
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		cfg.CookieSecure, err = strconv.ParseBool(v)
		if err != nil {
			err = errors.Wrapf(err, "invalid COOKIE_SECURE %q", v)
			return cfg, err
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		err = cfg.LogLevel.UnmarshalText([]byte(v))
		if err != nil {
			err = errors.Wrapf(err, "invalid LOG_LEVEL %q", v)
			return cfg, err
		}
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		cfg.SessionSecret, err = randomSecret()
		if err != nil {
			return cfg, err
		}
		cfg.GeneratedSecret = true
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks the invariants Load cannot express as defaults.
func (c *Config) Validate() (err error) {
	if c.Port <= 0 || c.Port > 65535 {
		err = errors.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
		return err
	}

	u, parseErr := url.Parse(c.APIBaseURL)
	if parseErr != nil || u.Scheme == "" || u.Host == "" {
		err = errors.Errorf("API_URL must be an absolute URL, got %q", c.APIBaseURL)
		return err
	}

	if len(c.SessionSecret) < minSecretLength {
		err = errors.Errorf("SESSION_SECRET must be at least %d characters", minSecretLength)
		return err
	}

	if c.SessionTTL <= 0 {
		err = errors.New("SESSION_TTL must be positive")
		return err
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		err = errors.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
		return err
	}

	if c.DBPath == "" {
		err = errors.New("DB_PATH must not be empty")
		return err
	}

	return err
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generating session secret")
	}
	return hex.EncodeToString(b), nil
}
