package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, "urgekeeper.db", c.DatabasePath)
	assert.Equal(t, 60*time.Second, c.PollInterval)
	assert.Equal(t, 200, c.FetchLimit)
	assert.Equal(t, 30*time.Second, c.OnlineCheckInterval)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
}

func TestLoadConfig_InvalidPanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-l", "0"}

	require.Panics(t, func() { LoadConfig() })
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "local only", mutate: func(c *Config) { c.ServerEndpointAddr = "" }},
		{name: "bad address", mutate: func(c *Config) { c.ServerEndpointAddr = "no-port" }, wantErr: true},
		{name: "no database", mutate: func(c *Config) { c.DatabasePath = "" }, wantErr: true},
		{name: "zero poll interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "fetch limit too large", mutate: func(c *Config) { c.FetchLimit = 501 }, wantErr: true},
		{name: "zero online check", mutate: func(c *Config) { c.OnlineCheckInterval = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
