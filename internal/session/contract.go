//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package session

import (
	"context"
	"time"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type DBRepo interface {
	GetProfile(ctx context.Context, profileID string) (*model.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
	CreateProfile(ctx context.Context, profile model.Profile) (*model.Profile, error)
}

type TokenIssuer interface {
	GenerateSessionToken(identity model.Identity, ttl time.Duration) (string, time.Time, error)
	ValidateSessionToken(tokenString string) (*model.SessionClaims, error)
}

type IdentityCache interface {
	Save(ctx context.Context, sessionID string, identity model.Identity, expiresAt time.Time) error
	Load(ctx context.Context, sessionID string) (*model.Identity, error)
	Delete(ctx context.Context, sessionID string) error
}
