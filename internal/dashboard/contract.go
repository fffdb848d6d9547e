package dashboard

import (
	"context"
	"time"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/changefeed"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type DBRepo interface {
	ListConversations(ctx context.Context, scope access.Scope) (model.ConversationList, error)
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	CreateConversation(ctx context.Context, conv model.NewConversation) (*model.Conversation, error)
	AssignConversation(ctx context.Context, conversationID, attendantID string) error
	UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error
	TouchConversation(ctx context.Context, conversationID string) (time.Time, error)
	ListMessages(ctx context.Context, conversationID string) (model.MessageList, error)
	InsertMessage(ctx context.Context, message model.NewMessage) (*model.Message, error)
}

type Projector interface {
	Project(ctx context.Context, conversations model.ConversationList) model.ConversationSummaryList
}

type Feed interface {
	Subscribe(filter changefeed.Filter, handler changefeed.Handler) *changefeed.Subscription
}

type Publisher interface {
	Publish(ctx context.Context, channel string, data interface{}) error
}
