package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/commandle/internal/cards"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-cert and --tls-key"},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, "--tls-cert and --tls-key"},
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 65536 }, "invalid port"},
		{"daily size one", func(c *Config) { c.dailySize = 1 }, "invalid daily size"},
		{"no pair attempts", func(c *Config) { c.pairAttempts = 0 }, "invalid pair attempts"},
		{"daily attempts below size", func(c *Config) { c.dailyAttempts = 2 }, "invalid daily attempts"},
		{"negative cache", func(c *Config) { c.artCacheSize = -1 }, "invalid art cache size"},
		{"negative rate", func(c *Config) { c.rateLimit = -1 }, "invalid rate limit"},
		{"negative timeout", func(c *Config) { c.fetchTimeout = -time.Second }, "invalid fetch timeout"},
		{"sessions never expire", func(c *Config) { c.sessionTimeout = 0 }, ""},
		{"session timeout too short", func(c *Config) { c.sessionTimeout = time.Nanosecond }, "invalid session timeout"},
		{"negative session timeout", func(c *Config) { c.sessionTimeout = -time.Minute }, "invalid session timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewCmd_Defaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags(nil))
	assert.NoError(t, cfg.validate())

	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 5, cfg.dailySize)
	assert.Equal(t, 10, cfg.pairAttempts)
	assert.Equal(t, 50, cfg.dailyAttempts)
	assert.Equal(t, 10*time.Second, cfg.fetchTimeout)
	assert.Equal(t, cards.FilterConfig{IncludePartner: true}, cfg.filters())
	assert.Equal(t, "http", cfg.scheme())
}

func TestNewCmd_Env(t *testing.T) {
	t.Setenv("COMMANDLE_PORT", "9090")
	t.Setenv("COMMANDLE_DAILY_SIZE", "7")
	t.Setenv("COMMANDLE_INCLUDE_ILLEGAL", "true")
	t.Setenv("COMMANDLE_RANK_URL", "http://ranks.example")

	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 7, cfg.dailySize)
	assert.True(t, cfg.includeIllegal)
	assert.Equal(t, "http://ranks.example", cfg.rankURL)
}

func TestNewCmd_FlagsBeatEnv(t *testing.T) {
	t.Setenv("COMMANDLE_PORT", "9090")

	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags([]string{"--port", "7070"}))
	assert.Equal(t, 7070, cfg.port)
}
