//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package metrics

import (
	"context"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type DBRepo interface {
	CountConversations(ctx context.Context, filter model.ConversationFilter) (int64, error)
	ListProfilesByRole(ctx context.Context, role model.Role) ([]model.Profile, error)
}
