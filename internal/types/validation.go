package types

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/sendqueue"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// Executor interface for dependency injection (used by async send operations)
type Executor interface {
	Submit(context.Context, string, sendqueue.Job) error
}

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when the server reports a missing resource
var ErrNotFound = fmt.Errorf("resource not found")

// ------------------------------
// Boundary Validation
// ------------------------------

// ValidateID checks that a server-assigned identifier is positive.
func ValidateID(id int64, field string) error {
	if id <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	return nil
}

// ValidateKind checks that kind is one of the two conversation kinds.
func ValidateKind(kind ConversationKind) error {
	if kind != KindDirect && kind != KindGroup {
		return fmt.Errorf("invalid conversation kind %q", kind)
	}
	return nil
}

// ValidateCreateConversation enforces the creation rules before any network
// call: a direct conversation has exactly two participants, a group has at
// least three and a non-empty trimmed name.
func ValidateCreateConversation(req CreateConversationRequest) error {
	if err := ValidateKind(req.Kind); err != nil {
		return err
	}
	switch req.Kind {
	case KindDirect:
		if len(req.Participants) != 2 {
			return fmt.Errorf("direct conversation needs exactly 2 participants, got %d", len(req.Participants))
		}
	case KindGroup:
		if len(req.Participants) < 3 {
			return fmt.Errorf("group conversation needs at least 3 participants, got %d", len(req.Participants))
		}
		if strings.TrimSpace(req.Name) == "" {
			return fmt.Errorf("group conversation requires a name")
		}
	}
	seen := make(map[int64]struct{}, len(req.Participants))
	for _, id := range req.Participants {
		if err := ValidateID(id, "participant id"); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate participant id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateSendMessage enforces the message content rule: at least one of
// text or attachment must be present.
func ValidateSendMessage(req SendMessageRequest) error {
	if err := ValidateID(req.ConversationID, "conversation id"); err != nil {
		return err
	}
	if err := ValidateID(req.SenderID, "sender id"); err != nil {
		return err
	}
	if req.Text == "" && req.Attachment == nil {
		return fmt.Errorf("message needs text or an attachment")
	}
	return nil
}

// ValidateEnsureChatUser checks the exactly-one-identifier rule.
func ValidateEnsureChatUser(req EnsureChatUserRequest) error {
	if (req.EmployeeID == nil) == (req.EmployerID == nil) {
		return fmt.Errorf("exactly one of employee_id or employer_id must be set")
	}
	if req.Role != RoleEmployee && req.Role != RoleEmployer {
		return fmt.Errorf("invalid role %q", req.Role)
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return fmt.Errorf("display name required")
	}
	return nil
}
