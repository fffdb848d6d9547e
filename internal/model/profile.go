package model

import (
	"time"
)

type Role string

const (
	RolePatient   Role = "patient"
	RoleAttendant Role = "attendant"
	RoleManager   Role = "manager"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleAttendant, RoleManager:
		return true
	default:
		return false
	}
}

type Profile struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	Role         Role    `db:"role" json:"role"`
	Avatar       *string `db:"avatar" json:"avatar,omitempty"`
	PasswordHash string  `db:"password_hash" json:"-"`
}

func (p Profile) Identity() Identity {
	identity := Identity{
		ID:    p.ID,
		Email: p.Email,
		Name:  p.Name,
		Role:  p.Role,
	}
	if p.Avatar != nil {
		identity.Avatar = *p.Avatar
	}
	return identity
}

// Identity is the read-only view of the signed-in user.
type Identity struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type Session struct {
	Identity  Identity  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "SIGNED_IN"
	SessionSignedOut SessionEventType = "SIGNED_OUT"
)

type SessionEvent struct {
	Type     SessionEventType
	Identity Identity
}

// ProfileUpdated is the payload of the profile-updated topic.
type ProfileUpdated struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
