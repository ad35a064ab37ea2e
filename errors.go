package chat

import (
	"errors"
	"fmt"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/sendqueue"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// Error taxonomy of the messaging core. Transport failures surface a
// retryable state and are never fatal; validation failures are resolved
// locally without touching the network.
var (
	// ErrNoIdentity means the supplied credentials did not contain exactly
	// one of the two role identifiers.
	ErrNoIdentity = errors.New("no usable chat identity")

	// ErrDirectoryUnavailable wraps a failed conversation list fetch. The
	// cached list is left untouched.
	ErrDirectoryUnavailable = errors.New("conversation directory unavailable")

	// ErrRosterUnavailable wraps a failed team roster fetch.
	ErrRosterUnavailable = errors.New("team roster unavailable")

	// ErrCreateFailed wraps a conversation create request that failed in
	// transport. The builder keeps the in-progress selection so the user
	// can retry.
	ErrCreateFailed = errors.New("conversation create failed")

	// ErrHistoryUnavailable wraps a failed message history fetch while
	// opening a conversation.
	ErrHistoryUnavailable = errors.New("message history unavailable")

	// ErrSendFailed marks a message persist that failed terminally. The
	// optimistic entry stays in the log flagged failed, never removed.
	ErrSendFailed = errors.New("message send failed")

	// ErrSocketDropped means the live channel is down. The session stays
	// logically open; call Reconnect to re-establish it.
	ErrSocketDropped = errors.New("live channel dropped")

	// ErrSessionNotOpen is returned by operations that require an open
	// conversation session.
	ErrSessionNotOpen = errors.New("conversation session not open")
)

// ValidationError reports a create-conversation input the core rejected
// before issuing any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ErrBackPressure is returned when the client's internal send queue is full.
var ErrBackPressure = sendqueue.ErrQueueFull

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// Re-export shared SDK error so callers compare against a single symbol.
var ErrNotFound = types.ErrNotFound
