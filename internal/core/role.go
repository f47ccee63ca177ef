package core

import "strings"

// Role is a member's role inside one group.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole accepts ADMIN or MEMBER in any case.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) String() string { return string(r) }

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// CanManageMembers reports whether the role may add members or change roles.
func (r Role) CanManageMembers() bool {
	return r == RoleAdmin
}

// CanManageGroup reports whether the role may change group settings such as
// the monthly target or the category registry.
func (r Role) CanManageGroup() bool {
	return r == RoleAdmin
}

// CanRecordFor reports whether an actor holding r may record a contribution
// or expense owned by memberID.
func (r Role) CanRecordFor(actorID, memberID int64) bool {
	if r == RoleAdmin {
		return true
	}
	return r == RoleMember && actorID == memberID
}

// CanDeleteRecord reports whether an actor holding r may delete a record
// owned by ownerID.
func (r Role) CanDeleteRecord(actorID, ownerID int64) bool {
	return r.CanRecordFor(actorID, ownerID)
}
