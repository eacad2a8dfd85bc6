package models

import "fmt"

// Role identifies which side of a session an actor is on
type Role string

const (
	RoleMentor      Role = "mentor"
	RoleParticipant Role = "participant"
)

// ParseRole validates a role string
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMentor, RoleParticipant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Actor is a party acting on a session. The negotiation engine treats
// mentors and participants uniformly through this type.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// ActorSession is the authenticated session stored in the request context
type ActorSession struct {
	ActorID   string `json:"actorId"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expiresAt"`
	IssuedAt  int64  `json:"issuedAt"`
}

// Actor returns the actor identity for the session
func (s *ActorSession) Actor() Actor {
	return Actor{ID: s.ActorID, Role: s.Role}
}
