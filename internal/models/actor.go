package models

// ActorRef identifies who performed an action. It is resolved once per request
// from the authenticated subject; MemberID is empty for a bootstrap administrator
// that has no team member record yet.
type ActorRef struct {
	MemberID    string       `json:"member_id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`
	Role        MemberRole   `json:"role"`
	Permissions []Permission `json:"permissions"`
}

func ActorFromMember(m *TeamMember) ActorRef {
	perms := make([]Permission, 0, len(m.Permissions))
	for _, p := range m.Permissions {
		perms = append(perms, Permission(p))
	}
	return ActorRef{
		MemberID:    m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Role:        m.Role,
		Permissions: perms,
	}
}

func (a ActorRef) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Role == RoleAdmin {
		return "Administrator"
	}
	return "Unknown"
}

func (a ActorRef) Can(p Permission) bool {
	for _, have := range a.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
