// Package profile keeps local profile names in step with the identity
// service's profile-updated events.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/config"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type Handler struct {
	repository DBRepo
}

func New(repo DBRepo) *Handler {
	return &Handler{repository: repo}
}

// Handler applies one event. Malformed payloads and unknown profiles are
// logged and acknowledged; only store failures are returned for redelivery.
func (h *Handler) Handler(ctx context.Context, in []byte) error {
	logger := logger_lib.FromContext(ctx, config.KeyLogger)
	logger.AddFuncName("ProfileUpdated")

	var event model.ProfileUpdated
	if err := json.Unmarshal(in, &event); err != nil {
		logger.Error(fmt.Sprintf("failed to decode profile event: %v", err))
		return nil
	}

	name := strings.TrimSpace(event.Name)
	if event.ID == "" || name == "" {
		logger.Warn(fmt.Sprintf("profile event without id or name: %s", string(in)))
		return nil
	}

	if err := h.repository.UpdateProfileName(ctx, event.ID, name); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn(fmt.Sprintf("profile %s is not known here", event.ID))
			return nil
		}
		logger.Error(fmt.Sprintf("failed to update name of profile %s: %v", event.ID, err))
		return fmt.Errorf("failed to update profile name: %w", err)
	}

	logger.Info(fmt.Sprintf("profile %s renamed", event.ID))
	return nil
}
