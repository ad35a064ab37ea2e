package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/api"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/job"
	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

// SessionState is the lifecycle state of a conversation session.
type SessionState int

const (
	StateClosed SessionState = iota
	StateOpening
	StateOpeningFailed
	StateOpen
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpening:
		return "Opening"
	case StateOpeningFailed:
		return "OpeningFailed"
	case StateOpen:
		return "Open"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// echoMatchWindow bounds the timestamp distance used to match a socket echo
// of one's own message against its pending optimistic entry.
const echoMatchWindow = 10 * time.Second

// Session owns the lifecycle of exactly one open conversation: history
// retrieval, the dedicated live socket, message send/receive and attachment
// staging. At most one socket is live at any time; opening a second
// conversation closes the first. The message log and staged attachment are
// destroyed on Close and rebuilt fresh on the next Open.
type Session struct {
	http        *http.Client
	baseURL     string
	dialer      *websocket.Dialer
	participant types.Participant
	queue       executor

	mu       sync.Mutex
	state    SessionState
	conv     types.Conversation
	conn     *websocket.Conn
	socketUp bool
	// gen increments on every Open and Close. Async results (history
	// fetches, persist acks, inbound frames) carry the generation they were
	// started under and are discarded if the session has moved on.
	gen      uint64
	messages []types.Message
	staged   *types.StagedAttachment
	// outbox retains the persist request of every not-yet-confirmed send so
	// a failed message can be retried verbatim.
	outbox map[string]types.SendMessageRequest

	displayName    string
	observer       func()
	typingObserver func(userID int64, displayName string)
}

func newSession(httpClient *http.Client, baseURL string, dialer *websocket.Dialer, participant types.Participant, queue executor) *Session {
	return &Session{
		http:        httpClient,
		baseURL:     baseURL,
		dialer:      dialer,
		participant: participant,
		queue:       queue,
		outbox:      make(map[string]types.SendMessageRequest),
	}
}

// SetObserver registers a callback fired synchronously after every state or
// log mutation, before the mutating call returns.
func (s *Session) SetObserver(fn func()) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// SetTypingObserver registers a callback for inbound typing indicators.
// Typing frames never enter the message log.
func (s *Session) SetTypingObserver(fn func(userID int64, displayName string)) {
	s.mu.Lock()
	s.typingObserver = fn
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conversation returns the conversation this session is bound to.
func (s *Session) Conversation() types.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv
}

// SocketUp reports whether the live channel is currently connected.
func (s *Session) SocketUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.socketUp
}

// Messages returns a snapshot of the message log, oldest first.
func (s *Session) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Open binds the session to conv: any prior socket is closed first, the
// message history is fetched (oldest first), and a dedicated live socket is
// established.
//
//   - A failed history fetch leaves the session in StateOpeningFailed with an
//     empty log and returns ErrHistoryUnavailable.
//   - A failed socket dial still reaches StateOpen (history is usable) but
//     returns ErrSocketDropped; call Reconnect to establish the channel.
//   - If Open is called again before the history fetch resolves, the stale
//     result is discarded.
func (s *Session) Open(ctx context.Context, conv types.Conversation) error {
	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.socketUp = false
	s.gen++
	gen := s.gen
	s.state = StateOpening
	s.conv = conv
	s.messages = nil
	s.staged = nil
	s.outbox = make(map[string]types.SendMessageRequest)
	s.mu.Unlock()
	s.notify()

	history, err := api.ListMessages(ctx, s.http, s.baseURL, conv.ID)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil // session moved on while the fetch was in flight
	}
	if err != nil {
		s.state = StateOpeningFailed
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	for i := range history {
		history[i].Delivery = types.DeliverySent
	}
	s.messages = history
	s.mu.Unlock()
	s.notify()

	conn, dialErr := api.DialLiveChannel(ctx, s.dialer, s.baseURL, conv.ID)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		if dialErr == nil {
			_ = conn.Close()
		}
		return nil
	}
	s.state = StateOpen
	if dialErr != nil {
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("%w: %v", ErrSocketDropped, dialErr)
	}
	s.conn = conn
	s.socketUp = true
	s.mu.Unlock()
	s.notify()

	go s.readLoop(gen, conn)
	return nil
}

// Close tears the session down: the socket handle is closed unconditionally
// (closing an already-closed session is a no-op), and the message log,
// staged attachment and outbox are cleared.
func (s *Session) Close() {
	s.mu.Lock()
	s.gen++
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.socketUp = false
	s.state = StateClosed
	s.messages = nil
	s.staged = nil
	s.outbox = make(map[string]types.SendMessageRequest)
	s.mu.Unlock()
	s.notify()
}

// StageAttachment stores a file to be sent with the next message. At most
// one file is staged; a second call replaces the first. No I/O happens here.
func (s *Session) StageAttachment(fileName string, data []byte) {
	s.mu.Lock()
	s.staged = &types.StagedAttachment{FileName: fileName, Data: data}
	s.mu.Unlock()
	s.notify()
}

// ClearAttachment discards the staged file, if any.
func (s *Session) ClearAttachment() {
	s.mu.Lock()
	s.staged = nil
	s.mu.Unlock()
	s.notify()
}

// Staged returns the currently staged attachment, or nil.
func (s *Session) Staged() *types.StagedAttachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged
}

// Send appends an optimistic message to the log, pushes it over the live
// socket, and enqueues the persist request. The optimistic entry is visible
// to observers before Send returns. A terminal persist failure flags the
// entry DeliveryFailed; it is never removed, so the user can retry it with
// RetrySend. Empty sends (no text, no staged attachment) are a no-op.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}
	staged := s.staged
	if text == "" && staged == nil {
		s.mu.Unlock()
		return nil
	}
	s.staged = nil
	gen := s.gen
	conv := s.conv

	msg := types.Message{
		LocalID:        uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       s.participant.ID,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
		Delivery:       types.DeliveryPending,
	}
	if staged != nil {
		msg.AttachmentName = staged.FileName
	}
	s.messages = append(s.messages, msg)

	req := types.SendMessageRequest{
		ConversationID: conv.ID,
		SenderID:       s.participant.ID,
		Text:           text,
		Attachment:     staged,
	}
	s.outbox[msg.LocalID] = req

	// Push over the socket so other participants see the message without
	// waiting for the persist round-trip. The two paths are reconciled on
	// the receiving end, so a write failure only degrades latency. Only
	// text travels this path: the attachment bytes go with the persist
	// request and the server broadcasts the persisted copy with its
	// attachment location, so an attachment-only frame would carry no
	// content receivers accept.
	if text != "" {
		s.pushFrameLocked(types.NewMessageFrame(types.Message{
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			Text:           msg.Text,
			CreatedAt:      msg.CreatedAt,
		}))
	}
	s.mu.Unlock()

	messagesSentTotal.Inc()
	s.notify()

	if err := s.submitPersist(ctx, gen, msg.LocalID, req); err != nil {
		s.markFailed(msg.LocalID)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// RetrySend re-enqueues the persist request of a message flagged
// DeliveryFailed, identified by its local ID.
func (s *Session) RetrySend(ctx context.Context, localID string) error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}
	req, ok := s.outbox[localID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no failed send with local id %s", localID)
	}
	found := false
	for i := range s.messages {
		if s.messages[i].LocalID == localID && s.messages[i].Delivery == types.DeliveryFailed {
			s.messages[i].Delivery = types.DeliveryPending
			found = true
			break
		}
	}
	gen := s.gen
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("no failed send with local id %s", localID)
	}
	s.notify()

	if err := s.submitPersist(ctx, gen, localID, req); err != nil {
		s.markFailed(localID)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// SendTyping pushes a typing indicator over the live socket. Dropped
// silently when the socket is down.
func (s *Session) SendTyping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return ErrSessionNotOpen
	}
	s.pushFrameLocked(types.NewTypingFrame(s.participant.ID, s.displayName))
	return nil
}

// Reconnect re-dials the live channel after a drop, with exponential
// backoff. The session must still be open; a connected socket is a no-op.
func (s *Session) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}
	if s.socketUp {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	convID := s.conv.ID
	s.mu.Unlock()

	errStale := errors.New("session moved on")
	op := func() error {
		conn, err := api.DialLiveChannel(ctx, s.dialer, s.baseURL, convID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		if s.gen != gen || s.state != StateOpen {
			s.mu.Unlock()
			_ = conn.Close()
			return backoff.Permanent(errStale)
		}
		s.conn = conn
		s.socketUp = true
		s.mu.Unlock()
		go s.readLoop(gen, conn)
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(exp, ctx)); err != nil {
		if errors.Is(err, errStale) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrSocketDropped, err)
	}
	reconnectsTotal.Inc()
	s.notify()
	return nil
}

// ------------------------- internals -------------------------

// sendFailure carries the identity of a terminally failed persist through
// the send queue's error handler back to the owning session.
type sendFailure struct {
	sess    *Session
	localID string
	err     error
}

func (e *sendFailure) Error() string { return fmt.Sprintf("send %s: %v", e.localID, e.err) }
func (e *sendFailure) Unwrap() error { return e.err }

// submitPersist enqueues the persist request keyed by conversation so sends
// within one conversation never reorder.
func (s *Session) submitPersist(ctx context.Context, gen uint64, localID string, req types.SendMessageRequest) error {
	j := job.New(func(jobCtx context.Context) error {
		ack, err := api.SendMessage(jobCtx, s.http, s.baseURL, req)
		if err != nil {
			return &sendFailure{sess: s, localID: localID, err: err}
		}
		s.markDelivered(gen, localID, ack.MessageID)
		return nil
	})
	return s.queue.Submit(ctx, strconv.FormatInt(req.ConversationID, 10), j)
}

// markDelivered reconciles the optimistic entry with the server-assigned ID.
// Idempotent with the socket-echo path: whichever arrives first wins the ID,
// the other is a no-op.
func (s *Session) markDelivered(gen uint64, localID string, serverID int64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.outbox, localID)
	for i := range s.messages {
		if s.messages[i].LocalID == localID {
			if s.messages[i].ID == 0 {
				s.messages[i].ID = serverID
			}
			s.messages[i].Delivery = types.DeliverySent
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// markFailed flags the optimistic entry undelivered. The entry and its
// outbox request are retained for RetrySend.
func (s *Session) markFailed(localID string) {
	s.mu.Lock()
	changed := false
	for i := range s.messages {
		if s.messages[i].LocalID == localID && s.messages[i].Delivery == types.DeliveryPending {
			s.messages[i].Delivery = types.DeliveryFailed
			changed = true
			break
		}
	}
	s.mu.Unlock()
	if changed {
		sendFailuresTotal.Inc()
		log.Warn().Str("local_id", localID).Msg("message persist failed, flagged undelivered")
		s.notify()
	}
}

// pushFrameLocked writes one frame to the socket. Callers hold s.mu, which
// serialises writers as gorilla/websocket requires. A write failure marks
// the socket dropped but never fails the logical operation.
func (s *Session) pushFrameLocked(frame types.Frame) {
	if !s.socketUp || s.conn == nil {
		return
	}
	data, err := frame.Encode()
	if err != nil {
		log.Error().Err(err).Msg("frame encode failed")
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Warn().Err(err).Int64("conversation_id", s.conv.ID).Msg("live channel write failed")
		s.socketUp = false
		socketDropsTotal.Inc()
	}
}

// readLoop consumes inbound frames until the socket closes. Malformed
// frames are logged and dropped; they never terminate the socket or the
// session. A read error while the session is still open marks the socket
// dropped so the caller can offer Reconnect.
func (s *Session) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			dropped := s.gen == gen && s.state == StateOpen
			if dropped {
				s.socketUp = false
				s.conn = nil
			}
			s.mu.Unlock()
			if dropped {
				socketDropsTotal.Inc()
				log.Warn().Err(err).Msg("live channel dropped")
				s.notify()
			}
			return
		}

		frame, perr := types.ParseFrame(data)
		if perr != nil {
			framesDroppedTotal.Inc()
			log.Warn().Err(perr).Msg("dropping malformed frame")
			continue
		}

		switch frame.Type {
		case types.FrameTyping:
			s.mu.Lock()
			stale := s.gen != gen
			cb := s.typingObserver
			s.mu.Unlock()
			if stale {
				return
			}
			if cb != nil && frame.UserID != s.participant.ID {
				cb(frame.UserID, frame.DisplayName)
			}

		case types.FrameMessage:
			s.mu.Lock()
			if s.gen != gen {
				s.mu.Unlock()
				return
			}
			s.appendIncomingLocked(*frame.Message)
			s.mu.Unlock()
			s.notify()
		}
	}
}

// appendIncomingLocked reconciles one inbound message with the log. The
// server broadcasts every message up to twice: the sender's pushed frame is
// rebroadcast verbatim (no server ID, to every connection including the
// sender) and the persisted copy follows with an ID. Reconciliation is
// order-independent across the push echo, the persisted broadcast and the
// persist ack: whichever arrives first claims the entry, the rest collapse
// into it. Matching is by sender + text + timestamp window.
func (s *Session) appendIncomingLocked(m types.Message) {
	m.Delivery = types.DeliverySent
	if m.ConversationID == 0 {
		m.ConversationID = s.conv.ID
	}

	if m.ID != 0 {
		for i := range s.messages {
			e := &s.messages[i]
			if e.ID == m.ID {
				// The persisted copy carries the attachment location the
				// ack does not.
				if e.AttachmentURL == "" && m.AttachmentURL != "" {
					e.AttachmentURL = m.AttachmentURL
					e.AttachmentType = m.AttachmentType
					e.AttachmentName = ""
				}
				return
			}
		}
		// Adopt the server identity onto the matching ID-less entry: the
		// local optimistic send, or the rebroadcast copy that got here first.
		for i := range s.messages {
			e := &s.messages[i]
			if e.ID == 0 && e.SenderID == m.SenderID && e.Text == m.Text &&
				withinEchoWindow(e.CreatedAt, m.CreatedAt) {
				localID := e.LocalID
				*e = m
				e.LocalID = localID
				if localID != "" {
					delete(s.outbox, localID)
				}
				s.bumpActivityLocked(m.CreatedAt)
				return
			}
		}
	} else {
		// An ID-less rebroadcast never confirms delivery on its own; drop it
		// when any entry already covers the message, whatever state that
		// entry is in.
		for i := range s.messages {
			e := &s.messages[i]
			if e.SenderID == m.SenderID && e.Text == m.Text &&
				withinEchoWindow(e.CreatedAt, m.CreatedAt) {
				return
			}
		}
	}

	s.messages = append(s.messages, m)
	s.bumpActivityLocked(m.CreatedAt)
}

// bumpActivityLocked advances the session's view of the conversation's last
// activity; it never moves backwards.
func (s *Session) bumpActivityLocked(at time.Time) {
	if at.IsZero() {
		return
	}
	if s.conv.LastMessageAt == nil || at.After(*s.conv.LastMessageAt) {
		t := at
		s.conv.LastMessageAt = &t
	}
}

func (s *Session) setDisplayName(name string) {
	s.mu.Lock()
	s.displayName = name
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.observer
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// withinEchoWindow reports whether two message timestamps are close enough
// to describe the same message. A zero timestamp (a peer that sends frames
// without one) always matches.
func withinEchoWindow(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return true
	}
	return absDuration(a.Sub(b)) <= echoMatchWindow
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
