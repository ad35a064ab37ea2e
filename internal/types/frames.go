package types

import (
	"encoding/json"
	"fmt"
)

// ------------------------------
// Live-channel frames
// ------------------------------

// FrameType discriminates inbound/outbound socket frames.
type FrameType string

const (
	FrameMessage FrameType = "message"
	FrameTyping  FrameType = "typing"
)

// Frame is the envelope exchanged over the live channel. The server
// rebroadcasts message frames to every connection of the conversation and
// typing frames to everyone but the sender.
type Frame struct {
	Type        FrameType `json:"type"`
	Message     *Message  `json:"message,omitempty"`
	UserID      int64     `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
}

// NewMessageFrame wraps a message for transmission.
func NewMessageFrame(m Message) Frame {
	return Frame{Type: FrameMessage, Message: &m}
}

// NewTypingFrame builds a typing indicator frame.
func NewTypingFrame(userID int64, displayName string) Frame {
	return Frame{Type: FrameTyping, UserID: userID, DisplayName: displayName}
}

// ParseFrame decodes and validates one inbound frame. Malformed payloads are
// rejected here so undefined fields never propagate inward; callers drop the
// frame and keep the socket alive.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("frame decode: %w", err)
	}
	switch f.Type {
	case FrameMessage:
		if f.Message == nil {
			return Frame{}, fmt.Errorf("message frame without message body")
		}
		if !f.Message.HasContent() {
			return Frame{}, fmt.Errorf("message frame with empty content")
		}
		if err := ValidateID(f.Message.SenderID, "sender id"); err != nil {
			return Frame{}, err
		}
	case FrameTyping:
		if err := ValidateID(f.UserID, "user id"); err != nil {
			return Frame{}, err
		}
	default:
		return Frame{}, fmt.Errorf("unknown frame type %q", f.Type)
	}
	return f, nil
}

// Encode serialises the frame for the wire.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}
