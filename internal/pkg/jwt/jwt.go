package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const realtimeTokenTTL = 30 * time.Minute

type Generator struct {
	secret []byte
	now    func() time.Time
}

func New(secret string) *Generator {
	return &Generator{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// GenerateSessionToken signs the bearer token handed out on sign-in. The jti
// makes tokens of the same user distinct, so each one keys its own session.
func (g *Generator) GenerateSessionToken(identity model.Identity, ttl time.Duration) (string, time.Time, error) {
	now := g.now()
	expiresAt := now.Add(ttl)

	claims := model.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
	}

	tokenString, err := g.sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session JWT token: %w", err)
	}

	return tokenString, expiresAt, nil
}

func (g *Generator) ValidateSessionToken(tokenString string) (*model.SessionClaims, error) {
	claims := &model.SessionClaims{}
	if err := g.parse(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session JWT token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid session JWT token: empty subject")
	}

	return claims, nil
}

func (g *Generator) GenerateConnectToken(userID string) (string, int64, error) {
	now := g.now()
	expiresAt := now.Add(realtimeTokenTTL)

	claims := model.CentrifugoConnectClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tokenString, err := g.sign(claims)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign connect JWT token: %w", err)
	}

	return tokenString, expiresAt.Unix(), nil
}

// GenerateSubscribeToken grants userID access to one private channel.
func (g *Generator) GenerateSubscribeToken(userID, channel string) (string, int64, error) {
	now := g.now()
	expiresAt := now.Add(realtimeTokenTTL)

	claims := model.CentrifugoSubscribeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Channel: channel,
		UserID:  userID,
	}

	tokenString, err := g.sign(claims)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign subscribe JWT token: %w", err)
	}

	return tokenString, expiresAt.Unix(), nil
}

func (g *Generator) ValidateConnectToken(tokenString string) (*model.CentrifugoConnectClaims, error) {
	claims := &model.CentrifugoConnectClaims{}
	if err := g.parse(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse connect JWT token: %w", err)
	}

	return claims, nil
}

func (g *Generator) ValidateSubscribeToken(tokenString string) (*model.CentrifugoSubscribeClaims, error) {
	claims := &model.CentrifugoSubscribeClaims{}
	if err := g.parse(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse subscribe JWT token: %w", err)
	}

	return claims, nil
}

func (g *Generator) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

func (g *Generator) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}

	return nil
}
