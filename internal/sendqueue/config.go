package sendqueue

import "time"

// Config tunes the queue. Zero values are replaced with defaults in New.
type Config struct {
	// Shards is the number of worker goroutines. Jobs with the same key
	// always land on the same shard.
	Shards int
	// QueueSize is the buffered capacity of each shard channel.
	QueueSize int
	// EnqueueTimeout bounds how long Submit waits for space before
	// reporting back-pressure.
	EnqueueTimeout time.Duration
	// MaxAttempts caps retries of a recoverable job failure.
	MaxAttempts int
	// BaseBackoff is the initial retry delay; doubled up to MaxInterval.
	BaseBackoff time.Duration
	// MaxInterval caps the retry delay.
	MaxInterval time.Duration
	// ErrorHandler receives the final error of a job that exhausted its
	// retries or failed irrecoverably. Optional.
	ErrorHandler func(error)
}

func (c *Config) applyDefaults() {
	if c.Shards <= 0 {
		c.Shards = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 100 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 10 * time.Second
	}
}
