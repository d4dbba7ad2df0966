package syncqueue

import (
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the queue tunables. Numeric values come from environment
// variables with the SQ_ prefix, e.g. SQ_SHARDS=2 SQ_MAX_ATTEMPTS=5.
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"128"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"8"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"20s"`

	// Retryable decides whether a failed job is attempted again. Nil means
	// every error is retried until MaxAttempts.
	Retryable func(error) bool `envconfig:"-"`

	// ErrorHandler receives the final error of a job that gave up.
	ErrorHandler func(error) `envconfig:"-"`

	Logger logging.Logger `envconfig:"-"`
}

// LoadConfig reads Config from SQ_* environment variables.
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("SQ", &c)
}

func (c *Config) applyDefaults() {
	if c.Shards <= 0 {
		c.Shards = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 100 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 20 * time.Second
	}
	if c.Logger == nil {
		c.Logger = logging.NewNopLogger()
	}
}
