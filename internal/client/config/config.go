package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the urgekeeper client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the record store gRPC endpoint. Empty
//     runs the client local-only.
//   - AccessToken: bearer token issued by the server's -issue flag.
//   - DatabasePath: SQLite file holding the local journal and preferences.
//   - PollInterval: period of the background history poll.
//   - FetchLimit: maximum events requested per poll.
//   - OnlineCheckInterval: how often an unreachable server is retried.
//   - AdminIdentities: account identities allowed to wipe remote history.
//   - Debug: enables debug logging (file only).
type Config struct {
	ServerEndpointAddr  string        `validate:"omitempty,hostname_port"`
	AccessToken         string
	DatabasePath        string        `validate:"required"`
	PollInterval        time.Duration `validate:"gt=0"`
	FetchLimit          int           `validate:"min=1,max=500"`
	OnlineCheckInterval time.Duration `validate:"gt=0"`
	AdminIdentities     []string
	Debug               bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "urgekeeper.db"
	c.PollInterval = 60 * time.Second
	c.FetchLimit = 200
	c.OnlineCheckInterval = 30 * time.Second
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones. It panics when the result is
// invalid.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
