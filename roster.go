package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/api"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// FilterRoster returns the entries whose full name contains query,
// case-insensitively. An empty query returns the input unchanged.
// Pure function, no I/O.
func FilterRoster(roster []types.RosterEntry, query string) []types.RosterEntry {
	if query == "" {
		return roster
	}
	q := strings.ToLower(query)
	var out []types.RosterEntry
	for _, e := range roster {
		if strings.Contains(strings.ToLower(e.FullName), q) {
			out = append(out, e)
		}
	}
	return out
}

// ToggleSelection applies one selection click. For a direct conversation
// selection is exclusive: the clicked entry replaces the whole set. For a
// group, the entry is added if absent and removed if present, preserving
// insertion order of the remaining members. Pure function.
func ToggleSelection(selected []types.RosterEntry, entry types.RosterEntry, kind types.ConversationKind) []types.RosterEntry {
	if kind == types.KindDirect {
		return []types.RosterEntry{entry}
	}
	for i, e := range selected {
		if e.ID == entry.ID && e.Role == entry.Role {
			out := make([]types.RosterEntry, 0, len(selected)-1)
			out = append(out, selected[:i]...)
			return append(out, selected[i+1:]...)
		}
	}
	return append(append([]types.RosterEntry{}, selected...), entry)
}

// Builder assembles new conversations: it loads the roster of eligible team
// members, tracks the in-progress selection, and issues the create request.
// Transient state (selection, group name, search text) survives a failed
// create so the user never loses input, and is cleared on success.
type Builder struct {
	http        *http.Client
	baseURL     string
	participant types.Participant

	mu        sync.Mutex
	roster    []types.RosterEntry
	selection []types.RosterEntry
	groupName string
	search    string
	observer  func()
}

func newBuilder(httpClient *http.Client, baseURL string, participant types.Participant) *Builder {
	return &Builder{http: httpClient, baseURL: baseURL, participant: participant}
}

// SetObserver registers a callback fired synchronously after every state
// mutation, before the mutating call returns.
func (b *Builder) SetObserver(fn func()) {
	b.mu.Lock()
	b.observer = fn
	b.mu.Unlock()
}

// LoadRoster fetches the eligible team members. On failure the previous
// roster is kept and ErrRosterUnavailable is returned; callers show
// "no members found" rather than an error page.
func (b *Builder) LoadRoster(ctx context.Context) ([]types.RosterEntry, error) {
	roster, err := api.FetchTeam(ctx, b.http, b.baseURL, b.participant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	b.mu.Lock()
	b.roster = roster
	b.mu.Unlock()
	b.notify()
	return roster, nil
}

// Roster returns the last loaded roster.
func (b *Builder) Roster() []types.RosterEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.RosterEntry{}, b.roster...)
}

// FilteredRoster applies the current search text to the loaded roster.
func (b *Builder) FilteredRoster() []types.RosterEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return FilterRoster(b.roster, b.search)
}

// Toggle records one selection click with the semantics of ToggleSelection.
func (b *Builder) Toggle(entry types.RosterEntry, kind types.ConversationKind) {
	b.mu.Lock()
	b.selection = ToggleSelection(b.selection, entry, kind)
	b.mu.Unlock()
	b.notify()
}

// Selection returns the in-progress member selection in insertion order.
func (b *Builder) Selection() []types.RosterEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.RosterEntry{}, b.selection...)
}

// SetGroupName stores the in-progress group name.
func (b *Builder) SetGroupName(name string) {
	b.mu.Lock()
	b.groupName = name
	b.mu.Unlock()
	b.notify()
}

// GroupName returns the in-progress group name.
func (b *Builder) GroupName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.groupName
}

// SetSearch stores the roster search text.
func (b *Builder) SetSearch(query string) {
	b.mu.Lock()
	b.search = query
	b.mu.Unlock()
	b.notify()
}

// Search returns the roster search text.
func (b *Builder) Search() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.search
}

// CreateConversation validates the given inputs and issues the create
// request with the requester first in the participant list.
//
//   - A validation failure returns *ValidationError and performs no network
//     call.
//   - A transport failure returns ErrCreateFailed; the builder's transient
//     state is retained for retry.
//   - On success the transient state is cleared and the created conversation
//     is returned; the caller hands it to Directory.RegisterNewConversation.
func (b *Builder) CreateConversation(ctx context.Context, kind types.ConversationKind, selected []types.RosterEntry, groupName string) (*types.Conversation, error) {
	switch kind {
	case types.KindDirect:
		if len(selected) != 1 {
			return nil, newValidationError("direct conversation needs exactly one selected member, got %d", len(selected))
		}
	case types.KindGroup:
		if len(selected) < 2 {
			return nil, newValidationError("group conversation needs at least two selected members, got %d", len(selected))
		}
		if strings.TrimSpace(groupName) == "" {
			return nil, newValidationError("group name required")
		}
	default:
		return nil, newValidationError("unknown conversation kind %q", kind)
	}

	participants := make([]int64, 0, len(selected)+1)
	participants = append(participants, b.participant.ID)
	for _, e := range selected {
		participants = append(participants, e.ID)
	}

	req := types.CreateConversationRequest{Kind: kind, Participants: participants}
	if kind == types.KindGroup {
		req.Name = strings.TrimSpace(groupName)
	}

	conv, err := api.CreateConversation(ctx, b.http, b.baseURL, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	b.mu.Lock()
	b.selection = nil
	b.groupName = ""
	b.search = ""
	b.mu.Unlock()
	b.notify()
	return conv, nil
}

// CreateFromSelection is the stateful variant: it uses the builder's own
// selection and group name.
func (b *Builder) CreateFromSelection(ctx context.Context, kind types.ConversationKind) (*types.Conversation, error) {
	b.mu.Lock()
	selected := append([]types.RosterEntry{}, b.selection...)
	name := b.groupName
	b.mu.Unlock()
	return b.CreateConversation(ctx, kind, selected, name)
}

func (b *Builder) notify() {
	b.mu.Lock()
	fn := b.observer
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}
