package chat

import "github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"

// Public type aliases so SDK consumers can import only the chat package.
type (
	// Domain entities
	Participant        = types.Participant
	RosterEntry        = types.RosterEntry
	Conversation       = types.Conversation
	ConversationMember = types.ConversationMember
	Message            = types.Message
	ChatUser           = types.ChatUser
	StagedAttachment   = types.StagedAttachment

	// Enumerations
	Role             = types.Role
	ConversationKind = types.ConversationKind
	DeliveryState    = types.DeliveryState

	// Requests
	EnsureChatUserRequest     = types.EnsureChatUserRequest
	CreateConversationRequest = types.CreateConversationRequest
	SendMessageRequest        = types.SendMessageRequest

	// Responses
	TeamResponse              = types.TeamResponse
	SendMessageResponse       = types.SendMessageResponse
	RenameGroupResponse       = types.RenameGroupResponse
	AddParticipantsResponse   = types.AddParticipantsResponse
	RemoveParticipantResponse = types.RemoveParticipantResponse
	LeaveConversationResponse = types.LeaveConversationResponse
	SetAdminResponse          = types.SetAdminResponse
)

const (
	RoleEmployee = types.RoleEmployee
	RoleEmployer = types.RoleEmployer

	KindDirect = types.KindDirect
	KindGroup  = types.KindGroup

	DeliveryPending = types.DeliveryPending
	DeliverySent    = types.DeliverySent
	DeliveryFailed  = types.DeliveryFailed
)

// Errors re-exported in errors.go
