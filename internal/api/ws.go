package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// DialLiveChannel opens the dedicated websocket for one conversation.
// The http(s) base URL is mapped to the ws(s) scheme.
func DialLiveChannel(ctx context.Context, dialer *websocket.Dialer, baseURL string, conversationID int64) (*websocket.Conn, error) {
	if err := types.ValidateID(conversationID, "conversation id"); err != nil {
		return nil, err
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("live channel: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// already a websocket URL
	default:
		return nil, fmt.Errorf("live channel: unsupported scheme %q", u.Scheme)
	}
	u.Path = fmt.Sprintf("/api/chat/ws/%d", conversationID)

	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("live channel dial: %w", err)
	}
	return conn, nil
}
