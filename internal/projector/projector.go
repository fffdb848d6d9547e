// Package projector turns raw conversation rows into list summaries.
package projector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const (
	NoMessagesPlaceholder = "Nenhuma mensagem ainda"
	PatientPlaceholder    = "Paciente"

	defaultFanOut = 16
)

type Projector struct {
	repository DBRepo
	logger     logger_lib.LoggerInterface
	fanOut     int
}

func New(repo DBRepo, logger logger_lib.LoggerInterface) *Projector {
	return &Projector{
		repository: repo,
		logger:     logger,
		fanOut:     defaultFanOut,
	}
}

// Project enriches every conversation independently and concurrently. The
// result keeps the input order; enrichment failures degrade to placeholders.
func (p *Projector) Project(ctx context.Context, conversations model.ConversationList) model.ConversationSummaryList {
	summaries := make(model.ConversationSummaryList, len(conversations))

	var g errgroup.Group
	g.SetLimit(p.fanOut)

	for i, conv := range conversations {
		g.Go(func() error {
			summary, err := p.ProjectOne(ctx, conv)
			if err != nil {
				p.logger.Warn(fmt.Sprintf("conversation %s projected with placeholders: %v", conv.ID, err))
			}
			summaries[i] = summary
			return nil
		})
	}

	_ = g.Wait()

	return summaries
}

// ProjectOne resolves the last message and the patient name in parallel. A
// non-nil error wraps model.ErrPartialEnrichment; the summary is always usable.
func (p *Projector) ProjectOne(ctx context.Context, conv model.Conversation) (model.ConversationSummary, error) {
	summary := model.ConversationSummary{
		Conversation:    conv,
		PatientName:     PatientPlaceholder,
		LastMessage:     NoMessagesPlaceholder,
		UnreadCount:     0,
		DisplayStatus:   conv.Status.Display(),
		DisplayPriority: conv.Priority.Display(),
	}

	var (
		lastMessage *model.Message
		profile     *model.Profile
		messageErr  error
		profileErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		lastMessage, messageErr = p.repository.GetLastMessage(ctx, conv.ID)
		return nil
	})
	g.Go(func() error {
		profile, profileErr = p.repository.GetProfile(ctx, conv.PatientID)
		return nil
	})
	_ = g.Wait()

	var failures []error

	switch {
	case messageErr == nil && lastMessage != nil:
		if strings.TrimSpace(lastMessage.Content) != "" {
			summary.LastMessage = lastMessage.Content
		}
		createdAt := lastMessage.CreatedAt
		summary.LastMessageAt = &createdAt
	case messageErr != nil && !errors.Is(messageErr, model.ErrNotFound):
		failures = append(failures, fmt.Errorf("last message: %w", messageErr))
	}

	switch {
	case profileErr == nil && profile != nil && strings.TrimSpace(profile.Name) != "":
		summary.PatientName = profile.Name
	case profileErr != nil:
		failures = append(failures, fmt.Errorf("patient profile: %w", profileErr))
	}

	if len(failures) > 0 {
		return summary, fmt.Errorf("%w: %w", model.ErrPartialEnrichment, errors.Join(failures...))
	}

	return summary, nil
}
