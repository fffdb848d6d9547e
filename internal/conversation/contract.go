//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package conversation

import (
	"context"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/changefeed"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type DBRepo interface {
	ListConversations(ctx context.Context, scope access.Scope) (model.ConversationList, error)
	AssignConversation(ctx context.Context, conversationID, attendantID string) error
	UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error
}

type Projector interface {
	Project(ctx context.Context, conversations model.ConversationList) model.ConversationSummaryList
}

type Feed interface {
	Subscribe(filter changefeed.Filter, handler changefeed.Handler) *changefeed.Subscription
}
