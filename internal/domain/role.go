package domain

// Role enumerates employee scopes.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// roleMeta carries the static per-role persistence metadata so role-table
// dispatch never happens on raw strings.
type roleMeta struct {
	table      string
	hasAddedBy bool
}

var roleMetas = map[Role]roleMeta{
	RoleAdmin:   {table: "admin_info", hasAddedBy: false},
	RoleManager: {table: "manager_info", hasAddedBy: true},
	RoleStaff:   {table: "staff_info", hasAddedBy: true},
}

// Valid reports whether the role is one of the three known scopes.
func (r Role) Valid() bool {
	_, ok := roleMetas[r]
	return ok
}

// Table returns the role-specific table identifier.
func (r Role) Table() string {
	return roleMetas[r].table
}

// HasAddedBy reports whether the role table carries an added_by column.
func (r Role) HasAddedBy() bool {
	return roleMetas[r].hasAddedBy
}

// Subordinate returns the role whose rows may report to this one.
func (r Role) Subordinate() (Role, bool) {
	switch r {
	case RoleAdmin:
		return RoleManager, true
	case RoleManager:
		return RoleStaff, true
	default:
		return "", false
	}
}
