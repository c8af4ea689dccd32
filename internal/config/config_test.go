package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWebConfig() Config {
	return Config{
		Port:           "8080",
		DBPath:         "./kakeibo.db",
		Mode:           ModeWeb,
		SessionHashKey: "0123456789abcdef0123456789abcdef",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid web config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid api config without session keys",
			mutate: func(c *Config) {
				c.Mode = ModeAPI
				c.SessionHashKey = ""
			},
		},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.Port = "abc" },
			wantErr: "invalid port 'abc'",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "must be between 1 and 65535",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "cluster" },
			wantErr: "invalid mode 'cluster'",
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: "database path cannot be empty",
		},
		{
			name:    "web mode without hash key",
			mutate:  func(c *Config) { c.SessionHashKey = "" },
			wantErr: "SESSION_HASH_KEY is required",
		},
		{
			name:    "hash key too short",
			mutate:  func(c *Config) { c.SessionHashKey = "short" },
			wantErr: "SESSION_HASH_KEY too short",
		},
		{
			name:    "block key of invalid length",
			mutate:  func(c *Config) { c.SessionBlockKey = "12345" },
			wantErr: "SESSION_BLOCK_KEY must be 16, 24 or 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validWebConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ModeWeb, cfg.Mode)
	assert.Equal(t, "./data/kakeibo.db", cfg.DBPath)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("APP_MODE", ModeAPI)
	t.Setenv("SECURE_COOKIES", "true")

	cfg := Load()
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, ModeAPI, cfg.Mode)
	assert.True(t, cfg.SecureCookies)
}

func TestBlockKeyNilWhenUnset(t *testing.T) {
	cfg := validWebConfig()
	assert.Nil(t, cfg.BlockKey())

	cfg.SessionBlockKey = "0123456789abcdef"
	assert.Len(t, cfg.BlockKey(), 16)
}
