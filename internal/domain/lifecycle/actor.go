package lifecycle

// Role represents the role of a user acting on a case
type Role string

const (
	RolePolice     Role = "POLICE"
	RoleSHO        Role = "SHO"
	RoleCourtClerk Role = "COURT_CLERK"
	RoleJudge      Role = "JUDGE"
)

var validRoles = map[Role]bool{
	RolePolice:     true,
	RoleSHO:        true,
	RoleCourtClerk: true,
	RoleJudge:      true,
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// Actor identifies the user requesting a transition. The engine trusts the
// resolver that produced it and does not re-authenticate.
type Actor struct {
	ID             string
	Role           Role
	OrganizationID string
}
