// Package chat keeps the message view of one open conversation in sync with the store.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/changefeed"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateSynced   State = "synced"
	StateFailed   State = "failed"
)

const resyncTimeout = 10 * time.Second

// ErrSuperseded is returned by Open when another Open or Close took over the
// view before the load finished.
var ErrSuperseded = errors.New("conversation view superseded")

var QuickReplies = []string{
	"Bom dia! Como posso ajudá-lo?",
	"Vou verificar sua agenda",
	"Aguarde um momento, por favor",
	"Obrigado pelo contato!",
}

type Reconciler struct {
	repository DBRepo
	feed       Feed
	logger     logger_lib.LoggerInterface
	onChange   func(model.ChatUpdate)

	notifyMu sync.Mutex

	mu             sync.Mutex
	identity       *model.Identity
	gen            uint64
	state          State
	conversationID string
	conversation   *model.Conversation
	timeline       *Timeline
	subs           []*changefeed.Subscription
	lastErr        error
}

func New(repo DBRepo, feed Feed, identity *model.Identity, logger logger_lib.LoggerInterface, onChange func(model.ChatUpdate)) *Reconciler {
	return &Reconciler{
		repository: repo,
		feed:       feed,
		logger:     logger,
		onChange:   onChange,
		identity:   identity,
		state:      StateUnloaded,
		timeline:   NewTimeline(),
	}
}

// SetIdentity replaces the acting identity. Signing out (nil) closes the view.
func (r *Reconciler) SetIdentity(identity *model.Identity) {
	r.mu.Lock()
	r.identity = identity
	r.mu.Unlock()

	if identity == nil {
		r.Close()
	}
}

// Open switches the view to conversationID. The previous subscription is torn
// down before the new one is made, and the new one is made before the initial
// fetch so no insert between fetch and subscribe is lost.
func (r *Reconciler) Open(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	r.unsubscribeLocked()
	r.gen++
	gen := r.gen
	r.state = StateLoading
	r.conversationID = conversationID
	r.conversation = nil
	r.timeline = NewTimeline()
	r.lastErr = nil
	r.subs = []*changefeed.Subscription{
		r.feed.Subscribe(changefeed.Filter{
			Table:  model.TableMessages,
			Op:     model.OpInsert,
			Column: "conversation_id",
			Value:  conversationID,
		}, r.messageHandler(gen)),
		r.feed.Subscribe(changefeed.Filter{
			Table:  model.TableConversations,
			Op:     model.OpUpdate,
			Column: "id",
			Value:  conversationID,
		}, r.conversationHandler(gen)),
	}
	r.mu.Unlock()
	r.notify()

	conv, messages, err := r.fetch(ctx, conversationID)
	if err != nil {
		return r.fail(gen, err)
	}

	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return ErrSuperseded
	}
	r.replaceConversationLocked(*conv)
	for _, msg := range messages {
		r.timeline.Insert(msg, Confirmed)
	}
	r.state = StateSynced
	r.mu.Unlock()
	r.notify()

	return nil
}

// Close unsubscribes and drops the held conversation. Late feed callbacks of
// the closed view are ignored.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.state == StateUnloaded && len(r.subs) == 0 {
		r.mu.Unlock()
		return
	}
	r.unsubscribeLocked()
	r.gen++
	r.state = StateUnloaded
	r.conversationID = ""
	r.conversation = nil
	r.timeline = NewTimeline()
	r.lastErr = nil
	r.mu.Unlock()
	r.notify()
}

// Send persists text as a new message of the open conversation. An attendant
// replying to an unassigned conversation claims it first; the two writes are
// not atomic. On failure the timeline is left untouched.
func (r *Reconciler) Send(ctx context.Context, text string) (*model.Message, error) {
	r.mu.Lock()
	identity := r.identity
	gen := r.gen
	var conv *model.Conversation
	if r.conversation != nil && r.state == StateSynced {
		c := *r.conversation
		conv = &c
	}
	r.mu.Unlock()

	if identity == nil || conv == nil {
		r.logger.Warn("send skipped: no identity or no open conversation")
		return nil, model.ErrValidationSkip
	}
	if strings.TrimSpace(text) == "" {
		r.logger.Warn("send skipped: empty message")
		return nil, model.ErrValidationSkip
	}

	if identity.Role == model.RoleAttendant && !conv.Assigned() {
		if err := r.repository.AssignConversation(ctx, conv.ID, identity.ID); err != nil {
			r.logger.Error(fmt.Sprintf("failed to claim conversation %s: %v", conv.ID, err))
			return nil, transient("failed to claim conversation", err)
		}

		r.mu.Lock()
		if r.gen == gen && r.conversation != nil {
			claimed := *r.conversation
			attendantID := identity.ID
			claimed.AttendantID = &attendantID
			r.conversation = &claimed
		}
		r.mu.Unlock()
	}

	saved, err := r.repository.InsertMessage(ctx, model.NewMessage{
		ConversationID: conv.ID,
		SenderID:       identity.ID,
		Content:        text,
		MessageType:    model.TextMessageType,
	})
	if err != nil {
		r.logger.Error(fmt.Sprintf("failed to send message to %s: %v", conv.ID, err))
		return nil, transient("failed to send message", err)
	}

	r.mu.Lock()
	if r.gen == gen {
		r.timeline.Insert(*saved, Pending)
	}
	r.mu.Unlock()
	r.notify()

	updatedAt, err := r.repository.TouchConversation(ctx, conv.ID)
	if err != nil {
		r.logger.Warn(fmt.Sprintf("failed to bump updated_at of %s: %v", conv.ID, err))
		return saved, nil
	}

	r.mu.Lock()
	if r.gen == gen && r.conversation != nil && updatedAt.After(r.conversation.UpdatedAt) {
		touched := *r.conversation
		touched.UpdatedAt = updatedAt
		r.conversation = &touched
	}
	r.mu.Unlock()
	r.notify()

	return saved, nil
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reconciler) ConversationID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conversationID
}

func (r *Reconciler) Conversation() *model.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conversation == nil {
		return nil
	}
	conv := *r.conversation
	return &conv
}

func (r *Reconciler) Messages() model.MessageList {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeline.Messages()
}

func (r *Reconciler) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeline.Entries()
}

func (r *Reconciler) Snapshot() model.ChatUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Reconciler) snapshotLocked() model.ChatUpdate {
	update := model.ChatUpdate{
		State:    string(r.state),
		Messages: make([]model.ChatMessage, 0, r.timeline.Len()),
	}
	if r.conversation != nil {
		conv := *r.conversation
		update.Conversation = &conv
	}
	if r.lastErr != nil {
		update.Error = r.lastErr.Error()
	}

	var viewerID string
	if r.identity != nil {
		viewerID = r.identity.ID
	}
	for _, e := range r.timeline.Entries() {
		update.Messages = append(update.Messages, model.ChatMessage{
			Message: e.Message,
			Pending: e.State == Pending,
			Mine:    viewerID != "" && e.Message.SenderID == viewerID,
		})
	}

	return update
}

func (r *Reconciler) fetch(ctx context.Context, conversationID string) (*model.Conversation, model.MessageList, error) {
	conv, err := r.repository.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil, fmt.Errorf("conversation %s not found: %w", conversationID, model.ErrNotFound)
		}
		return nil, nil, transient("failed to load conversation", err)
	}
	if conv == nil {
		return nil, nil, fmt.Errorf("conversation %s not found: %w", conversationID, model.ErrNotFound)
	}

	messages, err := r.repository.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, nil, transient("failed to load messages", err)
	}

	return conv, messages, nil
}

func (r *Reconciler) fail(gen uint64, err error) error {
	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return ErrSuperseded
	}
	r.unsubscribeLocked()
	r.state = StateFailed
	r.lastErr = err
	r.mu.Unlock()

	r.logger.Error(fmt.Sprintf("failed to open conversation: %v", err))
	r.notify()

	return err
}

func (r *Reconciler) messageHandler(gen uint64) changefeed.Handler {
	return func(event model.ChangeEvent) {
		if event.Op == changefeed.OpResync {
			go r.resync(gen)
			return
		}

		msg, err := event.Message()
		if err != nil {
			r.logger.Error(fmt.Sprintf("failed to decode message event: %v", err))
			return
		}

		r.mu.Lock()
		if r.gen != gen || msg.ConversationID != r.conversationID {
			r.mu.Unlock()
			return
		}
		changed := r.timeline.Insert(msg, Confirmed)
		r.mu.Unlock()

		if changed {
			r.notify()
		}
	}
}

func (r *Reconciler) conversationHandler(gen uint64) changefeed.Handler {
	return func(event model.ChangeEvent) {
		if event.Op == changefeed.OpResync {
			return
		}

		conv, err := event.Conversation()
		if err != nil {
			r.logger.Error(fmt.Sprintf("failed to decode conversation event: %v", err))
			return
		}

		r.mu.Lock()
		if r.gen != gen || conv.ID != r.conversationID {
			r.mu.Unlock()
			return
		}
		r.conversation = &conv
		r.mu.Unlock()

		r.notify()
	}
}

// resync refetches after the feed reported possible gaps; merging is idempotent.
func (r *Reconciler) resync(gen uint64) {
	r.mu.Lock()
	if r.gen != gen || r.state != StateSynced {
		r.mu.Unlock()
		return
	}
	conversationID := r.conversationID
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
	defer cancel()

	conv, messages, err := r.fetch(ctx, conversationID)
	if err != nil {
		r.logger.Warn(fmt.Sprintf("resync of %s failed: %v", conversationID, err))
		return
	}

	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return
	}
	r.replaceConversationLocked(*conv)
	for _, msg := range messages {
		r.timeline.Insert(msg, Confirmed)
	}
	r.mu.Unlock()

	r.notify()
}

// replaceConversationLocked keeps a feed-delivered row if it is newer than a fetched one.
func (r *Reconciler) replaceConversationLocked(conv model.Conversation) {
	if r.conversation != nil && r.conversation.UpdatedAt.After(conv.UpdatedAt) {
		return
	}
	r.conversation = &conv
}

func (r *Reconciler) unsubscribeLocked() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}

func (r *Reconciler) notify() {
	if r.onChange == nil {
		return
	}

	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	update := r.snapshotLocked()
	r.mu.Unlock()

	r.onChange(update)
}

func transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrTransientIO, err)
}
