package chat

import "github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"

// Credentials carries the externally stored session identifiers. The host
// application reads them once from its session storage and hands them to
// New; no component of this core re-reads ambient state afterwards.
type Credentials struct {
	EmployeeID int64
	EmployerID int64
}

// ResolveIdentity derives the local participant from credentials. Exactly
// one of the two identifiers must be set; otherwise ErrNoIdentity is
// returned. The result is immutable configuration for the session.
func ResolveIdentity(creds Credentials) (types.Participant, error) {
	switch {
	case creds.EmployeeID > 0 && creds.EmployerID > 0:
		return types.Participant{}, ErrNoIdentity
	case creds.EmployeeID > 0:
		return types.Participant{ID: creds.EmployeeID, Role: types.RoleEmployee}, nil
	case creds.EmployerID > 0:
		return types.Participant{ID: creds.EmployerID, Role: types.RoleEmployer}, nil
	default:
		return types.Participant{}, ErrNoIdentity
	}
}
