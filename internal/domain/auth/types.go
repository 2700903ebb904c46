package auth

// Package auth contains domain-level types for identities and session state.
// It is pure and free of transport/adapter concerns.

import (
	"fmt"
	"strings"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and mirroring.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin            Role = "Admin"
	RoleProjectManager   Role = "ProjectManager"
	RoleTechnicalManager Role = "TechnicalManager"
	RoleDeveloper        Role = "Developer"
)

// ParseRole normalizes a role string received from the backend or from a
// durable mirror into the closed role set. Legacy lower-case variants from
// older backend revisions ("admin", "user") are mapped onto the current set.
// Unrecognized values are rejected rather than propagated.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "projectmanager":
		return RoleProjectManager, nil
	case "technicalmanager":
		return RoleTechnicalManager, nil
	case "developer":
		return RoleDeveloper, nil
	case "user":
		// Legacy alias from the pre-role-split backend.
		return RoleDeveloper, nil
	default:
		return "", fmt.Errorf("unrecognized role %q", s)
	}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleTechnicalManager, RoleDeveloper:
		return true
	default:
		return false
	}
}

// Identity represents the authenticated principal returned by the backend.
// It is immutable once obtained for a given session; a new login produces a
// new Identity value, never a mutation of fields in place.
type Identity struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Position     string `json:"position,omitempty"`
	DepartmentID int    `json:"departmentId,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// DisplayName returns the human-readable name for the identity.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

// Source records the provenance of a session for diagnostics and fallback
// policy. It is never consulted for business logic.
type Source string

const (
	// SourceServer marks a session established by the backend.
	SourceServer Source = "server"
	// SourceDemo marks a locally-fabricated fallback session.
	SourceDemo Source = "demo"
	// SourceNone marks the empty, unauthenticated state.
	SourceNone Source = "none"
)

// SessionState is the live session snapshot published to subscribers.
// Invariant: Authenticated is true if and only if Identity is non-nil.
type SessionState struct {
	Identity      *Identity
	Authenticated bool
	Source        Source
}

// EmptyState returns the unauthenticated state.
func EmptyState() SessionState {
	return SessionState{Source: SourceNone}
}

// AuthenticatedState builds a session state holding the given identity.
func AuthenticatedState(id Identity, src Source) SessionState {
	return SessionState{Identity: &id, Authenticated: true, Source: src}
}
