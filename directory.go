package chat

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/api"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// Directory owns the cached list of conversations visible to the local
// participant. The server remains the source of truth; the cache is replaced
// atomically on every successful fetch so readers never observe a partial
// list. Server order is preserved because it encodes recency.
type Directory struct {
	http        *http.Client
	baseURL     string
	participant types.Participant

	mu            sync.Mutex
	conversations []types.Conversation
	// pending holds optimistic registrations the server has not echoed back
	// yet. A refresh that does not include them keeps them at the head of
	// the cache until a later refresh confirms or supersedes them.
	pending  []types.Conversation
	observer func()
}

func newDirectory(httpClient *http.Client, baseURL string, participant types.Participant) *Directory {
	return &Directory{http: httpClient, baseURL: baseURL, participant: participant}
}

// SetObserver registers a callback fired synchronously after every cache
// mutation, before the mutating call returns.
func (d *Directory) SetObserver(fn func()) {
	d.mu.Lock()
	d.observer = fn
	d.mu.Unlock()
}

// Conversations returns a snapshot of the cached list.
func (d *Directory) Conversations() []types.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.Conversation, len(d.conversations))
	copy(out, d.conversations)
	return out
}

// List fetches the participant's conversations and replaces the cache.
// On failure the cache is left untouched and ErrDirectoryUnavailable is
// returned; callers render an empty-but-retryable state.
func (d *Directory) List(ctx context.Context) ([]types.Conversation, error) {
	if err := d.Refresh(ctx); err != nil {
		return nil, err
	}
	return d.Conversations(), nil
}

// Refresh re-fetches the conversation list and replaces the cache
// atomically. Optimistic registrations absent from the server's response
// are retained at the head.
func (d *Directory) Refresh(ctx context.Context) error {
	convs, err := api.ListConversations(ctx, d.http, d.baseURL, d.participant.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	d.mu.Lock()
	confirmed := make(map[int64]struct{}, len(convs))
	for _, c := range convs {
		confirmed[c.ID] = struct{}{}
	}
	var stillPending []types.Conversation
	for _, p := range d.pending {
		if _, ok := confirmed[p.ID]; !ok {
			stillPending = append(stillPending, p)
		}
	}
	d.pending = stillPending
	d.conversations = append(append([]types.Conversation{}, stillPending...), convs...)
	notify := d.observer
	d.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// RegisterNewConversation inserts a freshly created conversation at the head
// of the cache, then refreshes to reconcile with server truth (the server
// may assign a different canonical name or ordering).
func (d *Directory) RegisterNewConversation(ctx context.Context, conv types.Conversation) error {
	d.mu.Lock()
	d.pending = append(d.pending, conv)
	d.conversations = append([]types.Conversation{conv}, d.conversations...)
	notify := d.observer
	d.mu.Unlock()

	if notify != nil {
		notify()
	}
	return d.Refresh(ctx)
}
