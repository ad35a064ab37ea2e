package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Role distinguishes the two kinds of chat actors. Exactly one backing
// identifier (employee or employer) exists per participant.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleEmployer Role = "employer"
)

// ConversationKind is the thread shape: two-party or named group.
type ConversationKind string

const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

// DeliveryState tracks an outbound message through the persist round-trip.
type DeliveryState string

const (
	// DeliveryPending marks an optimistic local entry awaiting server confirmation.
	DeliveryPending DeliveryState = "pending"
	// DeliverySent marks an entry confirmed by the server (has a server ID).
	DeliverySent DeliveryState = "sent"
	// DeliveryFailed marks an entry whose persist request failed terminally.
	// Failed entries are kept in the log so the user can retry them.
	DeliveryFailed DeliveryState = "failed"
)

// Participant is the local actor operating the messaging core.
// Derived once per session from externally supplied credentials and
// immutable afterwards.
type Participant struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// RosterEntry is a team member eligible for inclusion in a new conversation.
type RosterEntry struct {
	ID         int64  `json:"id"`
	Role       Role   `json:"role"`
	FullName   string `json:"full_name"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// ConversationMember is a confirmed participant of an existing conversation.
type ConversationMember struct {
	UserID   int64      `json:"user_id"`
	Role     string     `json:"role"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}

// Conversation is a direct or group message thread with a server identity.
type Conversation struct {
	ID            int64            `json:"id"`
	Kind          ConversationKind `json:"type"`
	Name          string           `json:"name,omitempty"`
	Participants  []int64          `json:"participants,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	LastMessageAt *time.Time       `json:"last_message_at,omitempty"`
}

// Message is one entry of a conversation log. A message created locally by
// Send has no server ID until the persist request resolves; LocalID keeps it
// addressable in the meantime and is never sent over the wire.
type Message struct {
	ID             int64         `json:"id,omitempty"`
	LocalID        string        `json:"-"`
	ConversationID int64         `json:"conversation_id,omitempty"`
	SenderID       int64         `json:"sender_id"`
	Text           string        `json:"text,omitempty"`
	AttachmentURL  string        `json:"attachment_url,omitempty"`
	AttachmentType string        `json:"attachment_type,omitempty"`
	// AttachmentName is the staged file name of a pending local send, kept
	// so the entry stays renderable before the server assigns the
	// attachment location. Never sent over the wire; cleared once
	// AttachmentURL is known.
	AttachmentName string        `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	Delivery       DeliveryState `json:"-"`
}

// HasContent reports whether the message carries at least one of text or
// attachment, the minimum the server accepts.
func (m Message) HasContent() bool {
	return m.Text != "" || m.AttachmentURL != ""
}

// ChatUser is the server-side chat identity backing a Participant.
type ChatUser struct {
	ID             int64  `json:"id"`
	Role           Role   `json:"role"`
	EmployeeID     *int64 `json:"employee_id,omitempty"`
	EmployerID     *int64 `json:"employer_id,omitempty"`
	DisplayName    string `json:"display_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// StagedAttachment is a file waiting to be sent with the next message.
// At most one is staged per session; staging another replaces it.
type StagedAttachment struct {
	FileName string
	Data     []byte
}
