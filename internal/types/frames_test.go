package types

import (
	"strings"
	"testing"
)

func TestParseFrame_Message(t *testing.T) {
	t.Parallel()
	raw := `{"type":"message","message":{"id":12,"conversation_id":3,"sender_id":7,"text":"hello"}}`
	f, err := ParseFrame([]byte(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if f.Type != FrameMessage {
		t.Fatalf("expected message frame, got %q", f.Type)
	}
	if f.Message == nil || f.Message.ID != 12 || f.Message.Text != "hello" {
		t.Fatalf("unexpected message: %+v", f.Message)
	}
}

func TestParseFrame_Typing(t *testing.T) {
	t.Parallel()
	raw := `{"type":"typing","user_id":9,"display_name":"Sam"}`
	f, err := ParseFrame([]byte(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if f.Type != FrameTyping || f.UserID != 9 || f.DisplayName != "Sam" {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestParseFrame_Rejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"type":"message",`},
		{"unknown type", `{"type":"presence","user_id":1}`},
		{"missing type", `{"user_id":1}`},
		{"message without body", `{"type":"message"}`},
		{"message without content", `{"type":"message","message":{"sender_id":7}}`},
		{"message without sender", `{"type":"message","message":{"text":"hi"}}`},
		{"typing without user", `{"type":"typing","display_name":"Sam"}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseFrame([]byte(tc.raw)); err == nil {
				t.Fatalf("expected error for %s", tc.raw)
			}
		})
	}
}

func TestFrame_EncodeRoundTrip(t *testing.T) {
	t.Parallel()
	out, err := NewTypingFrame(4, "Ana").Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.Contains(string(out), `"type":"typing"`) {
		t.Fatalf("encoded frame missing type: %s", out)
	}
	f, err := ParseFrame(out)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if f.UserID != 4 || f.DisplayName != "Ana" {
		t.Fatalf("unexpected round trip result: %+v", f)
	}
}

func TestNewMessageFrame_CopiesMessage(t *testing.T) {
	t.Parallel()
	m := Message{SenderID: 1, Text: "a"}
	f := NewMessageFrame(m)
	m.Text = "b"
	if f.Message.Text != "a" {
		t.Fatal("frame should hold its own copy of the message")
	}
}
