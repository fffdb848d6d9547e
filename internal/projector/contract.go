//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package projector

import (
	"context"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type DBRepo interface {
	GetLastMessage(ctx context.Context, conversationID string) (*model.Message, error)
	GetProfile(ctx context.Context, profileID string) (*model.Profile, error)
}
