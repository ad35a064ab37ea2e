package chat

import (
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("HOMEBASE_CHAT_BASE_URL", "http://chat.internal:8000")
	t.Setenv("HOMEBASE_CHAT_HTTP_TIMEOUT", "12s")
	t.Setenv("HOMEBASE_CHAT_API_KEY", "k123")
	t.Setenv("HOMEBASE_CHAT_DEBUG", "true")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	if cfg.BaseURL != "http://chat.internal:8000" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 12*time.Second {
		t.Fatalf("timeout = %v", cfg.HTTPTimeout)
	}
	if cfg.APIKey != "k123" || !cfg.Debug {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("HOMEBASE_CHAT_BASE_URL", "http://chat.internal:8000")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("default timeout = %v, want 30s", cfg.HTTPTimeout)
	}
}

func TestConfigFromEnv_RequiresBaseURL(t *testing.T) {
	t.Setenv("HOMEBASE_CHAT_BASE_URL", "")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error when base url is unset")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("HOMEBASE_CHAT_BASE_URL", "http://chat.internal:8000")
	t.Setenv("HOMEBASE_CHAT_DISPLAY_NAME", "Sam")

	c, err := NewFromEnv(Credentials{EmployeeID: 7})
	if err != nil {
		t.Fatalf("new from env failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if c.baseURL != "http://chat.internal:8000" {
		t.Fatalf("base url = %q", c.baseURL)
	}
	if c.session.displayName != "Sam" {
		t.Fatalf("display name = %q, want Sam", c.session.displayName)
	}
}
