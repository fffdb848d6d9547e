// Package metrics aggregates conversation counts for the manager overview.
package metrics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const countFanOut = 8

type Service struct {
	repository DBRepo
	now        func() time.Time
}

func New(repo DBRepo) *Service {
	return &Service{
		repository: repo,
		now:        time.Now,
	}
}

// Overview counts conversations store-wide. Only scopes allowed to view
// metrics may call it.
func (s *Service) Overview(ctx context.Context, scope access.Scope) (*model.DashboardMetrics, error) {
	if !scope.Can(access.ActionViewMetrics) {
		return nil, model.ErrForbidden
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	attendants, err := s.repository.ListProfilesByRole(ctx, model.RoleAttendant)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendants: %w: %w", model.ErrTransientIO, err)
	}

	result := &model.DashboardMetrics{
		Attendants:  make([]model.AttendantStats, len(attendants)),
		GeneratedAt: now,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countFanOut)

	count := func(dst *int64, filter model.ConversationFilter) {
		g.Go(func() error {
			n, err := s.repository.CountConversations(gctx, filter)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&result.TotalConversations, model.ConversationFilter{})
	count(&result.ActiveConversations, model.ConversationFilter{Status: model.StatusActive})
	count(&result.PendingConversations, model.ConversationFilter{Status: model.StatusPending})
	count(&result.ResolvedToday, model.ConversationFilter{Status: model.StatusResolved, UpdatedSince: today})

	for i, attendant := range attendants {
		stats := &result.Attendants[i]
		stats.ID = attendant.ID
		stats.Name = attendant.Name

		count(&stats.Conversations, model.ConversationFilter{AttendantID: attendant.ID})
		count(&stats.ResolvedToday, model.ConversationFilter{
			Status:       model.StatusResolved,
			AttendantID:  attendant.ID,
			UpdatedSince: today,
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w: %w", model.ErrTransientIO, err)
	}

	return result, nil
}
