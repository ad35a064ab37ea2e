package chat

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/api"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/job"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/sendqueue"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is the entry point of the messaging core. It resolves the local
// participant once from the supplied credentials and wires the three
// cooperating components around that identity: the conversation Directory,
// the membership Builder and the conversation Session.
type Client struct {
	baseURL     string
	http        *http.Client
	dialer      *websocket.Dialer
	exec        executor
	queueCfg    sendqueue.Config
	apiKey      string
	displayName string

	participant types.Participant
	directory   *Directory
	builder     *Builder
	session     *Session

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the chat backend at baseURL. The credentials
// must identify exactly one of the two roles; ErrNoIdentity is returned
// otherwise. Additional options can be provided via functional arguments.
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	participant, err := ResolveIdentity(creds)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 30 * time.Second},
		dialer:      websocket.DefaultDialer,
		participant: participant,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.queueCfg.ErrorHandler = handleSendError
	c.exec = sendqueue.New(c.queueCfg)

	if c.apiKey != "" {
		c.wrapTransportWithAPIKey()
	}

	c.directory = newDirectory(c.http, c.baseURL, participant)
	c.builder = newBuilder(c.http, c.baseURL, participant)
	c.session = newSession(c.http, c.baseURL, c.dialer, participant, c.exec)
	if c.displayName != "" {
		c.session.setDisplayName(c.displayName)
	}
	return c, nil
}

// handleSendError routes terminal persist failures from the send queue back
// to the session that owns the message.
func handleSendError(err error) {
	var sf *sendFailure
	if errors.As(err, &sf) {
		sf.sess.markFailed(sf.localID)
	}
}

// wrapTransportWithAPIKey wraps the HTTP client's transport to add the
// Authorization header to all requests using the configured API key.
func (c *Client) wrapTransportWithAPIKey() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &apiKeyTransport{
		base:   baseTransport,
		apiKey: c.apiKey,
	}
}

// apiKeyTransport wraps an http.RoundTripper to add an Authorization header.
type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(cloned)
}

// Close closes the open session (if any) and stops the send queue,
// draining pending persists. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.session != nil {
		c.session.Close()
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// Participant returns the resolved local identity.
func (c *Client) Participant() types.Participant { return c.participant }

// Directory returns the conversation directory.
func (c *Client) Directory() *Directory { return c.directory }

// Builder returns the membership builder.
func (c *Client) Builder() *Builder { return c.builder }

// Session returns the conversation session.
func (c *Client) Session() *Session { return c.session }

// AwaitDelivery blocks until all previously enqueued persists for the given
// conversation have been executed. It works by submitting a no-op job and
// waiting for it to run, thereby guaranteeing FIFO ordering has flushed.
func (c *Client) AwaitDelivery(ctx context.Context, conversationID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan struct{})
	j := job.New(func(context.Context) error {
		close(done)
		return nil
	})
	if err := c.exec.Submit(ctx, strconv.FormatInt(conversationID, 10), j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// --------------------------------------------------------------------
// Chat user operations - delegated to internal/api
// --------------------------------------------------------------------

// EnsureChatUser registers the chat identity for the local participant and
// records its display name for typing indicators.
func (c *Client) EnsureChatUser(ctx context.Context, displayName string) (*types.ChatUser, error) {
	req := types.EnsureChatUserRequest{Role: c.participant.Role, DisplayName: displayName}
	id := c.participant.ID
	switch c.participant.Role {
	case types.RoleEmployee:
		req.EmployeeID = &id
	case types.RoleEmployer:
		req.EmployerID = &id
	}
	cu, err := api.EnsureChatUser(ctx, c.http, c.baseURL, req)
	if err != nil {
		return nil, err
	}
	c.session.setDisplayName(cu.DisplayName)
	return cu, nil
}

// GetChatUser retrieves a chat identity by ID.
func (c *Client) GetChatUser(ctx context.Context, userID int64) (*types.ChatUser, error) {
	return api.GetChatUser(ctx, c.http, c.baseURL, userID)
}

// --------------------------------------------------------------------
// Directory operations - thin delegation
// --------------------------------------------------------------------

// ListConversations fetches the participant's conversations and refreshes
// the directory cache.
func (c *Client) ListConversations(ctx context.Context) ([]types.Conversation, error) {
	return c.directory.List(ctx)
}

// --------------------------------------------------------------------
// Session operations - thin delegation
// --------------------------------------------------------------------

// OpenConversation opens a conversation session (closing any prior one) and
// establishes its live channel.
func (c *Client) OpenConversation(ctx context.Context, conv types.Conversation) error {
	return c.session.Open(ctx, conv)
}

// Send sends a message in the open conversation.
func (c *Client) Send(ctx context.Context, text string) error {
	return c.session.Send(ctx, text)
}

// --------------------------------------------------------------------
// Builder operations - create then register
// --------------------------------------------------------------------

// CreateConversation validates and creates a conversation, then registers
// it with the directory so it is visible before the next refresh confirms it.
func (c *Client) CreateConversation(ctx context.Context, kind types.ConversationKind, selected []types.RosterEntry, groupName string) (*types.Conversation, error) {
	conv, err := c.builder.CreateConversation(ctx, kind, selected, groupName)
	if err != nil {
		return nil, err
	}
	// Registration refreshes the cache; a refresh failure is not fatal to
	// the create, the optimistic entry stays until the next refresh.
	_ = c.directory.RegisterNewConversation(ctx, *conv)
	return conv, nil
}

// --------------------------------------------------------------------
// Group management operations - delegated to internal/api
// --------------------------------------------------------------------

// ListParticipants returns the confirmed members of a conversation.
func (c *Client) ListParticipants(ctx context.Context, conversationID int64) ([]types.ConversationMember, error) {
	return api.ListParticipants(ctx, c.http, c.baseURL, conversationID)
}

// RenameGroup changes a group conversation's name (admin only).
func (c *Client) RenameGroup(ctx context.Context, conversationID int64, newName string) (*types.RenameGroupResponse, error) {
	return api.RenameGroup(ctx, c.http, c.baseURL, conversationID, c.participant.ID, newName)
}

// AddParticipants adds chat users to a group conversation (admin only).
func (c *Client) AddParticipants(ctx context.Context, conversationID int64, userIDs []int64) (*types.AddParticipantsResponse, error) {
	return api.AddParticipants(ctx, c.http, c.baseURL, conversationID, c.participant.ID, userIDs)
}

// RemoveParticipant removes a chat user from a group conversation (admin only).
func (c *Client) RemoveParticipant(ctx context.Context, conversationID, userID int64) (*types.RemoveParticipantResponse, error) {
	return api.RemoveParticipant(ctx, c.http, c.baseURL, conversationID, c.participant.ID, userID)
}

// LeaveConversation removes the local participant from a group conversation.
func (c *Client) LeaveConversation(ctx context.Context, conversationID int64) (*types.LeaveConversationResponse, error) {
	return api.LeaveConversation(ctx, c.http, c.baseURL, conversationID, c.participant.ID)
}

// SetAdmin grants or revokes a member's admin role (admin only).
func (c *Client) SetAdmin(ctx context.Context, conversationID, targetUserID int64, makeAdmin bool) (*types.SetAdminResponse, error) {
	return api.SetAdmin(ctx, c.http, c.baseURL, conversationID, c.participant.ID, targetUserID, makeAdmin)
}

// DeleteConversation removes a conversation the participant may delete.
func (c *Client) DeleteConversation(ctx context.Context, conversationID int64) error {
	return api.DeleteConversation(ctx, c.http, c.baseURL, conversationID, c.participant.ID)
}
