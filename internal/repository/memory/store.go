// Package memory is an in-process record store with the same surface as the
// postgres repository. Writes emit the change events the postgres triggers would.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type Publisher interface {
	Publish(event model.ChangeEvent) int
}

type Option func(*Store)

// WithClock overrides the timestamp source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithManualFlush queues change events until Flush is called, mimicking a
// feed that lags behind the write acknowledgement.
func WithManualFlush() Option {
	return func(s *Store) {
		s.manualFlush = true
	}
}

type Store struct {
	mu            sync.RWMutex
	conversations map[string]model.Conversation
	messages      map[string][]model.Message
	profiles      map[string]model.Profile
	emails        map[string]string

	publisher   Publisher
	now         func() time.Time
	manualFlush bool

	queueMu  sync.Mutex
	queue    []model.ChangeEvent
	flushing bool

	// failures maps an operation name to the error it returns next.
	failMu   sync.Mutex
	failures map[string]error
}

func New(publisher Publisher, opts ...Option) *Store {
	s := &Store{
		conversations: make(map[string]model.Conversation),
		messages:      make(map[string][]model.Message),
		profiles:      make(map[string]model.Profile),
		emails:        make(map[string]string),
		publisher:     publisher,
		now:           func() time.Time { return time.Now().UTC() },
		failures:      make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext makes the next call of op (a method name) return err.
func (s *Store) FailNext(op string, err error) {
	s.failMu.Lock()
	s.failures[op] = err
	s.failMu.Unlock()
}

// Flush publishes queued change events in commit order. A Flush issued from
// inside a handler returns immediately; the outer Flush drains its events.
func (s *Store) Flush() int {
	s.queueMu.Lock()
	if s.flushing {
		s.queueMu.Unlock()
		return 0
	}
	s.flushing = true

	published := 0
	for len(s.queue) > 0 {
		event := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		s.publish(event)
		published++

		s.queueMu.Lock()
	}
	s.flushing = false
	s.queueMu.Unlock()

	return published
}

func (s *Store) Pending() int {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	return len(s.queue)
}

func (s *Store) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	if err := s.check(ctx, "GetConversation"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
	}
	return &conv, nil
}

func (s *Store) ListConversations(ctx context.Context, scope access.Scope) (model.ConversationList, error) {
	if err := s.check(ctx, "ListConversations"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	conversations := make(model.ConversationList, 0, len(s.conversations))
	for _, conv := range s.conversations {
		if scope.Visible(conv) {
			conversations = append(conversations, conv)
		}
	}
	s.mu.RUnlock()

	sort.Slice(conversations, func(i, j int) bool {
		if !conversations[i].UpdatedAt.Equal(conversations[j].UpdatedAt) {
			return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
		}
		return conversations[i].ID < conversations[j].ID
	})

	return conversations, nil
}

func (s *Store) CreateConversation(ctx context.Context, conv model.NewConversation) (*model.Conversation, error) {
	if err := s.check(ctx, "CreateConversation"); err != nil {
		return nil, err
	}

	now := s.now()
	created := model.Conversation{
		ID:        uuid.NewString(),
		Title:     conv.Title,
		PatientID: conv.PatientID,
		Status:    conv.Status,
		Priority:  conv.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.conversations[created.ID] = created
	s.enqueueLocked(model.TableConversations, model.OpInsert, created, nil)
	s.mu.Unlock()

	s.flushIfAuto()
	return &created, nil
}

// SeedConversation stores conv as-is, keeping its id and timestamps.
func (s *Store) SeedConversation(conv model.Conversation) {
	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.mu.Unlock()
}

func (s *Store) AssignConversation(ctx context.Context, conversationID, attendantID string) error {
	if err := s.check(ctx, "AssignConversation"); err != nil {
		return err
	}
	return s.updateConversation(conversationID, func(conv *model.Conversation) {
		id := attendantID
		conv.AttendantID = &id
	})
}

func (s *Store) UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error {
	if err := s.check(ctx, "UpdateConversationStatus"); err != nil {
		return err
	}
	return s.updateConversation(conversationID, func(conv *model.Conversation) {
		conv.Status = status
	})
}

func (s *Store) TouchConversation(ctx context.Context, conversationID string) (time.Time, error) {
	if err := s.check(ctx, "TouchConversation"); err != nil {
		return time.Time{}, err
	}

	var updatedAt time.Time
	err := s.updateConversation(conversationID, func(conv *model.Conversation) {
		updatedAt = conv.UpdatedAt
	})
	return updatedAt, err
}

func (s *Store) updateConversation(conversationID string, mutate func(conv *model.Conversation)) error {
	s.mu.Lock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
	}
	old := conv
	if now := s.now(); now.After(conv.UpdatedAt) {
		conv.UpdatedAt = now
	}
	mutate(&conv)
	s.conversations[conversationID] = conv
	s.enqueueLocked(model.TableConversations, model.OpUpdate, conv, old)
	s.mu.Unlock()

	s.flushIfAuto()
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, message model.NewMessage) (*model.Message, error) {
	if err := s.check(ctx, "InsertMessage"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, ok := s.conversations[message.ConversationID]; !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("conversation %s: %w", message.ConversationID, model.ErrNotFound)
	}
	messageType := message.MessageType
	if messageType == "" {
		messageType = model.TextMessageType
	}
	saved := model.Message{
		ID:             uuid.NewString(),
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		MessageType:    messageType,
		CreatedAt:      s.now(),
	}
	s.messages[saved.ConversationID] = append(s.messages[saved.ConversationID], saved)
	s.enqueueLocked(model.TableMessages, model.OpInsert, saved, nil)
	s.mu.Unlock()

	s.flushIfAuto()
	return &saved, nil
}

// SeedMessage stores msg as-is without emitting an event.
func (s *Store) SeedMessage(msg model.Message) {
	s.mu.Lock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	s.mu.Unlock()
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) (model.MessageList, error) {
	if err := s.check(ctx, "ListMessages"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	messages := make(model.MessageList, len(s.messages[conversationID]))
	copy(messages, s.messages[conversationID])
	s.mu.RUnlock()

	sort.Slice(messages, func(i, j int) bool { return messages[i].Before(messages[j]) })
	return messages, nil
}

func (s *Store) GetLastMessage(ctx context.Context, conversationID string) (*model.Message, error) {
	messages, err := s.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("last message of %s: %w", conversationID, model.ErrNotFound)
	}
	last := messages[len(messages)-1]
	return &last, nil
}

func (s *Store) GetProfile(ctx context.Context, profileID string) (*model.Profile, error) {
	if err := s.check(ctx, "GetProfile"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("profile: %w", model.ErrNotFound)
	}
	return &profile, nil
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	if err := s.check(ctx, "GetProfileByEmail"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("profile: %w", model.ErrNotFound)
	}
	profile := s.profiles[id]
	return &profile, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile model.Profile) (*model.Profile, error) {
	if err := s.check(ctx, "CreateProfile"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	email := strings.ToLower(profile.Email)
	if _, taken := s.emails[email]; taken {
		s.mu.Unlock()
		return nil, model.ErrEmailTaken
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	s.profiles[profile.ID] = profile
	s.emails[email] = profile.ID
	public := profile
	public.PasswordHash = ""
	s.enqueueLocked(model.TableProfiles, model.OpInsert, public, nil)
	s.mu.Unlock()

	s.flushIfAuto()
	return &profile, nil
}

func (s *Store) UpdateProfileName(ctx context.Context, profileID, name string) error {
	if err := s.check(ctx, "UpdateProfileName"); err != nil {
		return err
	}

	s.mu.Lock()
	profile, ok := s.profiles[profileID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("profile %s: %w", profileID, model.ErrNotFound)
	}
	old := profile
	profile.Name = name
	s.profiles[profileID] = profile
	old.PasswordHash, profile.PasswordHash = "", ""
	s.enqueueLocked(model.TableProfiles, model.OpUpdate, profile, old)
	s.mu.Unlock()

	s.flushIfAuto()
	return nil
}

func (s *Store) ListProfilesByRole(ctx context.Context, role model.Role) ([]model.Profile, error) {
	if err := s.check(ctx, "ListProfilesByRole"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var profiles []model.Profile
	for _, profile := range s.profiles {
		if profile.Role == role {
			profiles = append(profiles, profile)
		}
	}
	s.mu.RUnlock()

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func (s *Store) CountConversations(ctx context.Context, filter model.ConversationFilter) (int64, error) {
	if err := s.check(ctx, "CountConversations"); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, conv := range s.conversations {
		if filter.Status != "" && conv.Status != filter.Status {
			continue
		}
		if filter.AttendantID != "" && !conv.AssignedTo(filter.AttendantID) {
			continue
		}
		if !filter.UpdatedSince.IsZero() && conv.UpdatedAt.Before(filter.UpdatedSince) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *Store) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

// enqueueLocked records the change under the write lock so the queue keeps
// commit order.
func (s *Store) enqueueLocked(table string, op model.ChangeOp, record, old interface{}) {
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	event := model.ChangeEvent{Table: table, Op: op, Record: raw}
	if old != nil {
		if rawOld, err := json.Marshal(old); err == nil {
			event.Old = rawOld
		}
	}

	s.queueMu.Lock()
	s.queue = append(s.queue, event)
	s.queueMu.Unlock()
}

func (s *Store) flushIfAuto() {
	if !s.manualFlush {
		s.Flush()
	}
}

func (s *Store) publish(event model.ChangeEvent) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
