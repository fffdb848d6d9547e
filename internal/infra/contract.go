//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package infra

import (
	"context"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type SessionResolver interface {
	Current(ctx context.Context, token string) (*model.Session, error)
}
