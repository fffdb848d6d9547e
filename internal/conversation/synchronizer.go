// Package conversation keeps a user's role-scoped conversation list current.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/changefeed"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

const (
	FilterAll        = "all"
	FilterPending    = "pending"
	FilterInProgress = "in-progress"
	FilterResolved   = "resolved"
)

const refreshTimeout = 15 * time.Second

type Synchronizer struct {
	repository DBRepo
	projector  Projector
	feed       Feed
	logger     logger_lib.LoggerInterface
	onChange   func(model.InboxUpdate)

	notifyMu sync.Mutex

	mu            sync.Mutex
	identity      *model.Identity
	scope         access.Scope
	gen           uint64
	state         State
	conversations model.ConversationSummaryList
	lastErr       error
	subs          []*changefeed.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
	running       bool
	queued        bool
	idle          *sync.Cond
}

func New(repo DBRepo, projector Projector, feed Feed, logger logger_lib.LoggerInterface, onChange func(model.InboxUpdate)) *Synchronizer {
	s := &Synchronizer{
		repository: repo,
		projector:  projector,
		feed:       feed,
		logger:     logger,
		onChange:   onChange,
		state:      StateIdle,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Start mounts the list for identity: it subscribes to every conversation and
// message change and performs the first load. The returned error is the
// first load's; later failures surface through the Error state.
func (s *Synchronizer) Start(ctx context.Context, identity model.Identity) error {
	s.Stop()

	s.mu.Lock()
	s.gen++
	gen := s.gen
	id := identity
	s.identity = &id
	s.scope = access.Resolve(identity)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.subs = []*changefeed.Subscription{
		s.feed.Subscribe(changefeed.Filter{Table: model.TableConversations}, s.changeHandler(gen)),
		s.feed.Subscribe(changefeed.Filter{Table: model.TableMessages}, s.changeHandler(gen)),
	}
	s.running = true
	s.mu.Unlock()

	err := s.refresh(ctx, gen)
	s.drain(gen)

	return err
}

// SetIdentity remounts the list when the identity changes. nil stops it.
func (s *Synchronizer) SetIdentity(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	current := s.identity
	s.mu.Unlock()

	if identity == nil {
		s.Stop()
		return nil
	}
	if current != nil && current.ID == identity.ID && current.Role == identity.Role {
		return nil
	}
	return s.Start(ctx, *identity)
}

// Stop unsubscribes and discards any refresh still in flight. Nothing is
// published after Stop returns.
func (s *Synchronizer) Stop() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.identity = nil
	s.state = StateIdle
	s.conversations = nil
	s.lastErr = nil
	s.queued = false
	s.running = false
	s.idle.Broadcast()
}

// Refresh forces a resync, coalesced with any refresh already running.
func (s *Synchronizer) Refresh() {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	s.trigger(gen)
}

// Assign sets the attendant of conversationID. A conversation already known
// to be assigned is rejected; otherwise the write is last-write-wins.
func (s *Synchronizer) Assign(ctx context.Context, conversationID, attendantID string) error {
	s.mu.Lock()
	scope := s.scope
	mounted := s.identity != nil
	known, found := s.findLocked(conversationID)
	s.mu.Unlock()

	if !mounted {
		return model.ErrNoSession
	}
	switch scope.Role() {
	case model.RoleManager:
	case model.RoleAttendant:
		if attendantID != scope.UserID() {
			return model.ErrForbidden
		}
	default:
		return model.ErrForbidden
	}
	if found && known.Assigned() {
		return fmt.Errorf("conversation %s: %w", conversationID, model.ErrAlreadyAssigned)
	}

	if err := s.repository.AssignConversation(ctx, conversationID, attendantID); err != nil {
		s.logger.Error(fmt.Sprintf("failed to assign conversation %s: %v", conversationID, err))
		return wrapStoreErr("failed to assign conversation", err)
	}

	s.Refresh()
	return nil
}

func (s *Synchronizer) SetStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q: %w", status, model.ErrValidationSkip)
	}

	s.mu.Lock()
	scope := s.scope
	mounted := s.identity != nil
	s.mu.Unlock()

	if !mounted {
		return model.ErrNoSession
	}
	if scope.Role() == model.RolePatient {
		return model.ErrForbidden
	}

	if err := s.repository.UpdateConversationStatus(ctx, conversationID, status); err != nil {
		s.logger.Error(fmt.Sprintf("failed to update status of %s: %v", conversationID, err))
		return wrapStoreErr("failed to update conversation status", err)
	}

	s.Refresh()
	return nil
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synchronizer) Scope() access.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

func (s *Synchronizer) Conversations() model.ConversationSummaryList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Filter narrows the list to one display status bucket. Unknown kinds and
// FilterAll return the whole list.
func (s *Synchronizer) Filter(kind string) model.ConversationSummaryList {
	list := s.Conversations()
	switch kind {
	case FilterPending, FilterInProgress, FilterResolved:
	default:
		return list
	}

	filtered := make(model.ConversationSummaryList, 0, len(list))
	for _, conv := range list {
		if conv.DisplayStatus == kind {
			filtered = append(filtered, conv)
		}
	}
	return filtered
}

// Priority returns up to n conversations needing attention: high or urgent
// priority, or still pending.
func (s *Synchronizer) Priority(n int) model.ConversationSummaryList {
	if n <= 0 {
		return model.ConversationSummaryList{}
	}
	list := s.Conversations()

	out := make(model.ConversationSummaryList, 0, n)
	for _, conv := range list {
		if len(out) >= n {
			break
		}
		if conv.Priority == model.PriorityHigh || conv.Priority == model.PriorityUrgent || conv.Status == model.StatusPending {
			out = append(out, conv)
		}
	}
	return out
}

func (s *Synchronizer) Snapshot() model.InboxUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Wait blocks until no refresh is running or queued.
func (s *Synchronizer) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

func (s *Synchronizer) changeHandler(gen uint64) changefeed.Handler {
	return func(model.ChangeEvent) {
		s.trigger(gen)
	}
}

// trigger starts a refresh, or queues one behind the refresh in flight.
func (s *Synchronizer) trigger(gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.identity == nil {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.queued = true
		s.mu.Unlock()
		return
	}
	s.running = true
	parent := s.ctx
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(parent, refreshTimeout)
		_ = s.refresh(ctx, gen)
		cancel()
		s.drain(gen)
	}()
}

// drain runs queued refreshes until none is left, then clears running. A
// superseded generation leaves running to its successor.
func (s *Synchronizer) drain(gen uint64) {
	for {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		if !s.queued {
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		s.queued = false
		parent := s.ctx
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(parent, refreshTimeout)
		_ = s.refresh(ctx, gen)
		cancel()
	}
}

func (s *Synchronizer) refresh(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoading
	scope := s.scope
	s.mu.Unlock()
	s.notify(gen)

	list, err := s.repository.ListConversations(ctx, scope)
	if err != nil {
		err = wrapStoreErr("failed to load conversations", err)

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return nil
		}
		s.state = StateError
		s.lastErr = err
		s.mu.Unlock()

		s.logger.Error(err.Error())
		s.notify(gen)
		return err
	}

	summaries := s.projector.Project(ctx, list)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil
	}
	s.conversations = summaries
	s.state = StateReady
	s.lastErr = nil
	s.mu.Unlock()

	s.notify(gen)
	return nil
}

func (s *Synchronizer) findLocked(conversationID string) (model.Conversation, bool) {
	for _, conv := range s.conversations {
		if conv.ID == conversationID {
			return conv.Conversation, true
		}
	}
	return model.Conversation{}, false
}

func (s *Synchronizer) copyLocked() model.ConversationSummaryList {
	out := make(model.ConversationSummaryList, len(s.conversations))
	copy(out, s.conversations)
	return out
}

func (s *Synchronizer) snapshotLocked() model.InboxUpdate {
	update := model.InboxUpdate{
		State:         string(s.state),
		Conversations: s.copyLocked(),
	}
	if s.lastErr != nil {
		update.Error = s.lastErr.Error()
	}
	return update
}

// notify publishes the current snapshot unless gen has been superseded.
func (s *Synchronizer) notify(gen uint64) {
	if s.onChange == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	update := s.snapshotLocked()
	s.mu.Unlock()

	s.onChange(update)
}

func wrapStoreErr(op string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrTransientIO, err)
}
