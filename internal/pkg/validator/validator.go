package validator

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/JovanneSousa/health-chat-sync/internal/api"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

const (
	maxContentLength  = 500
	maxTitleLength    = 120
	minPasswordLength = 6
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateSignUp(req *api.SignUpRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}

	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return fmt.Errorf("email '%s' is not valid", req.Email)
	}

	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("password must have at least %d characters", minPasswordLength)
	}

	if !model.Role(req.Role).Valid() {
		return fmt.Errorf("role '%s' is not supported", req.Role)
	}

	return nil
}

func (v *Validator) ValidateCreateConversation(req *api.CreateConversationRequest) error {
	if len([]rune(req.Title)) > maxTitleLength {
		return fmt.Errorf("title exceeds maximum length of %d characters", maxTitleLength)
	}

	return nil
}

func (v *Validator) ValidateSetStatus(req *api.SetStatusRequest) error {
	if !model.ConversationStatus(req.Status).Valid() {
		return fmt.Errorf("status '%s' is not supported", req.Status)
	}

	return nil
}

// ValidateSendMessage rejects blank content; callers treat that as a skipped send.
func (v *Validator) ValidateSendMessage(req *api.SendMessageRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("content cannot be empty: %w", model.ErrValidationSkip)
	}

	if len([]rune(req.Content)) > maxContentLength {
		return fmt.Errorf("content exceeds maximum length of %d characters", maxContentLength)
	}

	if req.MessageType != "" && req.MessageType != model.TextMessageType {
		return fmt.Errorf("message type '%s' is not supported yet", req.MessageType)
	}

	return nil
}
