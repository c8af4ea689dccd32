package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Modes the server can run in.
const (
	ModeAPI = "api" // anonymous single-tenant JSON API
	ModeWeb = "web" // multi-tenant pages with sessions
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DBPath string

	// Variant selection
	Mode string

	// Sessions (web mode). The hash key signs cookies, the block key
	// optionally encrypts them. Both come from the environment, never
	// from source.
	SessionHashKey  string
	SessionBlockKey string
	SecureCookies   bool
}

// Load reads configuration from the environment with defaults.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./data/kakeibo.db"),
		Mode:            getEnv("APP_MODE", ModeWeb),
		SessionHashKey:  getEnv("SESSION_HASH_KEY", ""),
		SessionBlockKey: getEnv("SESSION_BLOCK_KEY", ""),
		SecureCookies:   getEnvBool("SECURE_COOKIES", false),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Mode != ModeAPI && c.Mode != ModeWeb {
		errs = append(errs, fmt.Sprintf("invalid mode '%s': must be '%s' or '%s'", c.Mode, ModeAPI, ModeWeb))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	} else {
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.Mode == ModeWeb {
		if c.SessionHashKey == "" {
			errs = append(errs, "SESSION_HASH_KEY is required in web mode")
		} else if len(c.SessionHashKey) < 32 {
			errs = append(errs, fmt.Sprintf("SESSION_HASH_KEY too short: got %d bytes, need at least 32", len(c.SessionHashKey)))
		}
		if n := len(c.SessionBlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
			errs = append(errs, fmt.Sprintf("SESSION_BLOCK_KEY must be 16, 24 or 32 bytes, got %d", n))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// HashKey returns the session signing key as bytes.
func (c *Config) HashKey() []byte {
	return []byte(c.SessionHashKey)
}

// BlockKey returns the session encryption key, or nil when unset.
func (c *Config) BlockKey() []byte {
	if c.SessionBlockKey == "" {
		return nil
	}
	return []byte(c.SessionBlockKey)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
