package workflow

import "bitbucket.org/flact/governance_backend/models"

// Principal identifies who is acting and under which tenant. It is passed
// by value into every service entry point; nothing reads it from ambient
// state.
type Principal struct {
	UserId     int
	AllianceId int
	Role       models.UserRole
	Name       string
}

func (p Principal) IsCosignatory() bool {
	return p.Role == models.UserRoleCoSignatory
}

// InitiatorId is nil for system principals so audit rows can tell users
// and background jobs apart.
func (p Principal) InitiatorId() *int {
	if p.UserId == 0 {
		return nil
	}
	id := p.UserId
	return &id
}
