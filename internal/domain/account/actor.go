package account

import "github.com/google/uuid"

// Actor is the authenticated caller of an operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// SystemActor performs scheduled transitions (approval timeouts, auto-completion)
var SystemActor = Actor{ID: uuid.Nil, Role: RoleAdmin}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a Actor) IsClient() bool { return a.Role == RoleClient }
func (a Actor) IsCook() bool   { return a.Role == RoleCook }
func (a Actor) IsDriver() bool { return a.Role == RoleDriver }

// IsSystem reports whether the actor is the scheduler rather than a user
func (a Actor) IsSystem() bool { return a.ID == uuid.Nil }
