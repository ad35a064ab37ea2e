package types

// ------------------------------
// Response Types
// ------------------------------

// TeamResponse wraps the roster endpoint response
type TeamResponse struct {
	Team []RosterEntry `json:"team"`
}

// SendMessageResponse acknowledges a persisted message
type SendMessageResponse struct {
	MessageID int64 `json:"message_id"`
}

// RenameGroupResponse mirrors the rename endpoint response shape
type RenameGroupResponse struct {
	ID   int64            `json:"id"`
	Name string           `json:"name"`
	Kind ConversationKind `json:"type"`
}

// AddParticipantsResponse lists the chat-user IDs the server accepted
type AddParticipantsResponse struct {
	ID    int64   `json:"id"`
	Added []int64 `json:"added"`
}

// RemoveParticipantResponse acknowledges a participant removal
type RemoveParticipantResponse struct {
	ID            int64 `json:"id"`
	RemovedUserID int64 `json:"removed_user_id"`
}

// LeaveConversationResponse acknowledges leaving a group
type LeaveConversationResponse struct {
	ID         int64 `json:"id"`
	LeftUserID int64 `json:"left_user_id"`
}

// SetAdminResponse reports the participant role after an admin change
type SetAdminResponse struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}
