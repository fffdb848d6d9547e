// Package session signs users in against the profiles table and keeps their
// identity cached until they sign out.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const minPasswordLength = 6

type Provider struct {
	repository DBRepo
	tokens     TokenIssuer
	cache      IdentityCache
	logger     logger_lib.LoggerInterface
	ttl        time.Duration
	cost       int

	mu        sync.RWMutex
	listeners map[uint64]func(model.SessionEvent)
	next      uint64
}

func New(repo DBRepo, tokens TokenIssuer, cache IdentityCache, ttl time.Duration, logger logger_lib.LoggerInterface) *Provider {
	return &Provider{
		repository: repo,
		tokens:     tokens,
		cache:      cache,
		logger:     logger,
		ttl:        ttl,
		cost:       bcrypt.DefaultCost,
		listeners:  make(map[uint64]func(model.SessionEvent)),
	}
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	profile, err := p.repository.GetProfileByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get profile: %w: %w", model.ErrTransientIO, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return p.open(ctx, profile.Identity())
}

// SignUp creates the profile and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password, name string, role model.Role) (*model.Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, fmt.Errorf("email and name are required: %w", model.ErrValidationSkip)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must have at least %d characters: %w", minPasswordLength, model.ErrValidationSkip)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, model.ErrValidationSkip)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := p.repository.CreateProfile(ctx, model.Profile{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create profile: %w: %w", model.ErrTransientIO, err)
	}

	return p.open(ctx, profile.Identity())
}

// SignOut drops the cached identity behind token.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.ValidateSessionToken(token)
	if err != nil {
		return model.ErrNoSession
	}

	identity, err := p.cache.Load(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, model.ErrNoSession) {
			return model.ErrNoSession
		}
		return fmt.Errorf("%w: %w", model.ErrTransientIO, err)
	}

	if err := p.cache.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("%w: %w", model.ErrTransientIO, err)
	}

	p.logger.Info(fmt.Sprintf("user %s signed out", identity.ID))
	p.emit(model.SessionEvent{Type: model.SessionSignedOut, Identity: *identity})

	return nil
}

// Current resolves the session behind token. A token whose identity is no
// longer cached was signed out.
func (p *Provider) Current(ctx context.Context, token string) (*model.Session, error) {
	claims, err := p.tokens.ValidateSessionToken(token)
	if err != nil {
		return nil, model.ErrNoSession
	}

	identity, err := p.cache.Load(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, model.ErrNoSession) {
			return nil, model.ErrNoSession
		}
		return nil, fmt.Errorf("%w: %w", model.ErrTransientIO, err)
	}

	session := &model.Session{
		Identity: *identity,
		Token:    token,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Subscribe registers fn for sign-in and sign-out events. The returned func
// removes it.
func (p *Provider) Subscribe(fn func(model.SessionEvent)) func() {
	p.mu.Lock()
	p.next++
	id := p.next
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) open(ctx context.Context, identity model.Identity) (*model.Session, error) {
	token, expiresAt, err := p.tokens.GenerateSessionToken(identity, p.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	claims, err := p.tokens.ValidateSessionToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to read issued token: %w", err)
	}

	if err := p.cache.Save(ctx, claims.ID, identity, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to cache identity: %w: %w", model.ErrTransientIO, err)
	}

	p.logger.Info(fmt.Sprintf("user %s signed in as %s", identity.ID, identity.Role))
	p.emit(model.SessionEvent{Type: model.SessionSignedIn, Identity: identity})

	return &model.Session{
		Identity:  identity,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (p *Provider) emit(event model.SessionEvent) {
	p.mu.RLock()
	listeners := make([]func(model.SessionEvent), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
