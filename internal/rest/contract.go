//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package rest

import (
	"context"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/api"
	"github.com/JovanneSousa/health-chat-sync/internal/dashboard"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type Sessions interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, email, password, name string, role model.Role) (*model.Session, error)
	SignOut(ctx context.Context, token string) error
	Current(ctx context.Context, token string) (*model.Session, error)
}

type Dashboards interface {
	Mount(ctx context.Context, identity model.Identity) (*dashboard.Dashboard, error)
}

type MetricsService interface {
	Overview(ctx context.Context, scope access.Scope) (*model.DashboardMetrics, error)
}

type Validator interface {
	ValidateSignUp(req *api.SignUpRequest) error
	ValidateCreateConversation(req *api.CreateConversationRequest) error
	ValidateSetStatus(req *api.SetStatusRequest) error
	ValidateSendMessage(req *api.SendMessageRequest) error
}

type JWTGenerator interface {
	GenerateConnectToken(userID string) (string, int64, error)
	GenerateSubscribeToken(userID, channel string) (string, int64, error)
}
