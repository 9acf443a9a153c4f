package domain

import "time"

// Credential is the login record shared by every employee.
type Credential struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
}

// Detail holds the descriptive fields of an employee, one-to-one with
// Credential via the shared id.
type Detail struct {
	ID          int64
	FirstName   string
	LastName    string
	Title       string
	PhoneNumber string
	DateOfBirth time.Time
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DetailPatch describes a partial update; nil fields are left unchanged.
type DetailPatch struct {
	FirstName   *string
	LastName    *string
	Title       *string
	PhoneNumber *string
	DateOfBirth *time.Time
	Email       *string
}

// Empty reports whether the patch changes nothing.
func (p DetailPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Title == nil &&
		p.PhoneNumber == nil && p.DateOfBirth == nil && p.Email == nil
}

// EmployeeSummary is the public directory listing row.
type EmployeeSummary struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
}

// Profile is the single-employee view. Owner lookups populate every field;
// lookups by anyone else carry only the reduced set, so the sensitive fields
// are omitted from the encoded response rather than zeroed.
type Profile struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Title       string     `json:"title"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Username    *string    `json:"username,omitempty"`
}

// RoleRecord is the sum of the three role-table shapes keyed by Role.
// Exactly one role table holds a given id at a time; the lifecycle service
// preserves that invariant across scope changes.
type RoleRecord struct {
	Role        Role
	ID          int64
	AddedBy     *int64 // manager and staff rows only
	ReportingTo *int64 // manager and staff rows only
	IsPrimary   bool   // admin rows only
	IsSuper     bool   // admin rows only
}
