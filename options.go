package chat

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/sendqueue"
)

// Option configures a Client during construction in New.
//
// Options are applied before the authorization transport wrapper is
// installed, so transport-related options (like debug logging) end up
// underneath the API-key wrapper. Options must be deterministic and
// side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true. Do not enable in production; dumps include
// headers and bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			base := c.http.Transport
			if base == nil {
				base = http.DefaultTransport
			}
			c.http.Transport = &debugTransport{base: base}
		}
		return nil
	}
}

// WithAPIKey attaches a bearer token to every HTTP request. Optional; the
// chat backend runs without authentication in development.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		if key == "" {
			return fmt.Errorf("api key must not be empty")
		}
		c.apiKey = key
		return nil
	}
}

// WithWebsocketDialer replaces the dialer used for the live channel,
// e.g. to set handshake timeouts or TLS configuration.
func WithWebsocketDialer(d *websocket.Dialer) Option {
	return func(c *Client) error {
		if d == nil {
			return fmt.Errorf("websocket dialer must not be nil")
		}
		c.dialer = d
		return nil
	}
}

// WithSendQueueConfig tunes the internal send queue (shard count, capacity,
// retry policy). The queue's error handler is owned by the client and
// cannot be overridden.
func WithSendQueueConfig(cfg sendqueue.Config) Option {
	return func(c *Client) error {
		cfg.ErrorHandler = nil // installed by the client
		c.queueCfg = cfg
		return nil
	}
}

// WithDisplayName sets the name other participants see in typing
// indicators. Defaults to the name registered with EnsureChatUser.
func WithDisplayName(name string) Option {
	return func(c *Client) error {
		c.displayName = name
		return nil
	}
}
