// Package access resolves what a signed-in identity may see and do.
package access

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type Action string

const (
	ActionAssignSelf  Action = "assign_self"
	ActionResolve     Action = "resolve"
	ActionViewMetrics Action = "view_metrics"
	ActionStartChat   Action = "start_chat"
)

// Scope is the capability set of one role, resolved once per identity.
type Scope struct {
	userID  string
	role    model.Role
	allowed map[Action]struct{}
}

var capabilities = map[model.Role][]Action{
	model.RolePatient:   {ActionStartChat},
	model.RoleAttendant: {ActionAssignSelf, ActionResolve},
	model.RoleManager:   {ActionResolve, ActionViewMetrics},
}

// Resolve builds the scope for identity. Unknown roles get a patient scope
// bound to the identity's own id, the narrowest visibility available.
func Resolve(identity model.Identity) Scope {
	role := identity.Role
	if !role.Valid() {
		role = model.RolePatient
	}

	allowed := make(map[Action]struct{})
	for _, action := range capabilities[role] {
		allowed[action] = struct{}{}
	}

	return Scope{
		userID:  identity.ID,
		role:    role,
		allowed: allowed,
	}
}

func (s Scope) Role() model.Role {
	return s.role
}

func (s Scope) UserID() string {
	return s.userID
}

func (s Scope) Can(action Action) bool {
	_, ok := s.allowed[action]
	return ok
}

// Predicate returns the filter over the conversations table, nil when the
// role sees everything.
func (s Scope) Predicate() sq.Sqlizer {
	switch s.role {
	case model.RoleManager:
		return nil
	case model.RoleAttendant:
		return sq.Or{
			sq.Eq{"attendant_id": s.userID},
			sq.Eq{"attendant_id": nil},
		}
	default:
		return sq.Eq{"patient_id": s.userID}
	}
}

// Visible evaluates Predicate against a single row in memory.
func (s Scope) Visible(conv model.Conversation) bool {
	switch s.role {
	case model.RoleManager:
		return true
	case model.RoleAttendant:
		return !conv.Assigned() || *conv.AttendantID == s.userID
	default:
		return conv.PatientID == s.userID
	}
}

// Actions lists what the UI may offer on conv.
func (s Scope) Actions(conv model.Conversation) []Action {
	var actions []Action
	if s.Can(ActionAssignSelf) && !conv.Assigned() {
		actions = append(actions, ActionAssignSelf)
	}
	if s.Can(ActionResolve) && conv.Status != model.StatusResolved {
		actions = append(actions, ActionResolve)
	}
	if s.Can(ActionViewMetrics) {
		actions = append(actions, ActionViewMetrics)
	}
	return actions
}

func (s Scope) Allows(action Action, conv model.Conversation) bool {
	for _, a := range s.Actions(conv) {
		if a == action {
			return true
		}
	}
	return false
}
