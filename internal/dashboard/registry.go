// Package dashboard mounts one conversation list and one chat view per
// signed-in user and streams both to the user's realtime channels.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/chat"
	"github.com/JovanneSousa/health-chat-sync/internal/client/centrifugo"
	"github.com/JovanneSousa/health-chat-sync/internal/conversation"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const (
	mountTimeout   = 15 * time.Second
	publishTimeout = 5 * time.Second
)

type Dashboard struct {
	identity   model.Identity
	scope      access.Scope
	repository DBRepo
	logger     logger_lib.LoggerInterface

	inbox  *conversation.Synchronizer
	chat   *chat.Reconciler
	outbox *outbox
}

func (d *Dashboard) Identity() model.Identity {
	return d.identity
}

func (d *Dashboard) Scope() access.Scope {
	return d.scope
}

func (d *Dashboard) Inbox() *conversation.Synchronizer {
	return d.inbox
}

func (d *Dashboard) Chat() *chat.Reconciler {
	return d.chat
}

// StartConversation opens a new active conversation for a patient and posts
// the greeting on their behalf. A failed greeting does not undo the
// conversation.
func (d *Dashboard) StartConversation(ctx context.Context, title string) (*model.Conversation, error) {
	if !d.scope.Can(access.ActionStartChat) {
		return nil, model.ErrForbidden
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultConversationTitle
	}

	conv, err := d.repository.CreateConversation(ctx, model.NewConversation{
		Title:     title,
		PatientID: d.identity.ID,
		Status:    model.StatusActive,
		Priority:  model.PriorityNormal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w: %w", model.ErrTransientIO, err)
	}

	_, err = d.repository.InsertMessage(ctx, model.NewMessage{
		ConversationID: conv.ID,
		SenderID:       d.identity.ID,
		Content:        model.GreetingMessage,
		MessageType:    model.TextMessageType,
	})
	if err != nil {
		d.logger.Warn(fmt.Sprintf("failed to post greeting in %s: %v", conv.ID, err))
	}

	return conv, nil
}

// OpenChat switches the chat view to conversationID if the user's scope can
// see it. Hidden conversations are reported as forbidden without touching the
// current view.
func (d *Dashboard) OpenChat(ctx context.Context, conversationID string) error {
	conv, err := d.repository.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get conversation: %w: %w", model.ErrTransientIO, err)
	}

	if !d.scope.Visible(*conv) {
		return model.ErrForbidden
	}

	return d.chat.Open(ctx, conversationID)
}

func (d *Dashboard) stop() {
	d.inbox.Stop()
	d.chat.SetIdentity(nil)
	d.outbox.close()
}

type Registry struct {
	repository DBRepo
	projector  Projector
	feed       Feed
	publisher  Publisher
	logger     logger_lib.LoggerInterface

	mu         sync.Mutex
	dashboards map[string]*Dashboard
}

func New(repo DBRepo, projector Projector, feed Feed, publisher Publisher, logger logger_lib.LoggerInterface) *Registry {
	return &Registry{
		repository: repo,
		projector:  projector,
		feed:       feed,
		publisher:  publisher,
		logger:     logger,
		dashboards: make(map[string]*Dashboard),
	}
}

// Mount returns the dashboard of identity, creating and loading it on first
// use. A dashboard mounted under another role is replaced. The error is the
// first list load's; the dashboard stays mounted in the error state.
func (r *Registry) Mount(ctx context.Context, identity model.Identity) (*Dashboard, error) {
	r.mu.Lock()
	existing, ok := r.dashboards[identity.ID]
	if ok && existing.identity.Role == identity.Role {
		r.mu.Unlock()
		return existing, nil
	}

	d := r.build(identity)
	r.dashboards[identity.ID] = d
	r.mu.Unlock()

	if ok {
		existing.stop()
	}

	r.logger.Info(fmt.Sprintf("mounting dashboard of %s as %s", identity.ID, identity.Role))

	if err := d.inbox.Start(ctx, identity); err != nil {
		return d, err
	}
	return d, nil
}

func (r *Registry) Get(userID string) (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dashboards[userID]
	return d, ok
}

// Unmount tears the user's dashboard down. Nothing is published for it
// afterwards.
func (r *Registry) Unmount(userID string) {
	r.mu.Lock()
	d, ok := r.dashboards[userID]
	delete(r.dashboards, userID)
	r.mu.Unlock()

	if !ok {
		return
	}

	r.logger.Info(fmt.Sprintf("unmounting dashboard of %s", userID))
	d.stop()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.dashboards)
}

// HandleSessionEvent mounts on sign-in and tears down on sign-out.
func (r *Registry) HandleSessionEvent(event model.SessionEvent) {
	switch event.Type {
	case model.SessionSignedIn:
		ctx, cancel := context.WithTimeout(context.Background(), mountTimeout)
		defer cancel()

		if _, err := r.Mount(ctx, event.Identity); err != nil {
			r.logger.Warn(fmt.Sprintf("first load of %s failed: %v", event.Identity.ID, err))
		}
	case model.SessionSignedOut:
		r.Unmount(event.Identity.ID)
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	dashboards := r.dashboards
	r.dashboards = make(map[string]*Dashboard)
	r.mu.Unlock()

	for _, d := range dashboards {
		d.stop()
	}
}

func (r *Registry) build(identity model.Identity) *Dashboard {
	d := &Dashboard{
		identity:   identity,
		scope:      access.Resolve(identity),
		repository: r.repository,
		logger:     r.logger,
		outbox:     newOutbox(r.publisher, r.logger, publishTimeout),
	}

	inboxChannel := centrifugo.InboxChannel(identity.ID)
	chatChannel := centrifugo.ChatChannel(identity.ID)

	d.inbox = conversation.New(r.repository, r.projector, r.feed, r.logger, func(update model.InboxUpdate) {
		d.outbox.push(inboxChannel, update)
	})

	actor := identity
	d.chat = chat.New(r.repository, r.feed, &actor, r.logger, func(update model.ChatUpdate) {
		d.outbox.push(chatChannel, update)
	})

	return d
}
