package chat

import (
	"context"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/sendqueue"
)

// executor abstracts the internal async job runner used by the send path.
type executor interface {
	Submit(context.Context, string, sendqueue.Job) error
	Stop()
}

// Note: all clients include an executor by default; Send requires it.
