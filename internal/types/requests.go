package types

// ------------------------------
// Request Types
// ------------------------------

// EnsureChatUserRequest registers (or re-registers) the chat identity for the
// local participant. Exactly one of EmployeeID/EmployerID must be set.
type EnsureChatUserRequest struct {
	EmployeeID  *int64
	EmployerID  *int64
	Role        Role
	DisplayName string
}

// CreateConversationRequest holds parameters for a new conversation.
// Participants carries chat-user IDs, requester first.
type CreateConversationRequest struct {
	Kind         ConversationKind `json:"type"`
	Participants []int64          `json:"participants"`
	Name         string           `json:"name,omitempty"`
}

// SendMessageRequest holds parameters for persisting one message.
// The server requires at least one of Text or Attachment.
type SendMessageRequest struct {
	ConversationID int64
	SenderID       int64
	Text           string
	Attachment     *StagedAttachment
}
