package dto

import "time"

// DateLayout is the wire format for date_of_birth fields.
const DateLayout = "2006-01-02"

// LoginRequest payload for POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordChangeRequest payload for PATCH /pwd/:id.
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// RoleOptions carries the role-specific attributes of a new employee.
type RoleOptions struct {
	IsSuper     bool   `json:"is_super"`
	IsPrimary   bool   `json:"is_primary"`
	ReportingTo *int64 `json:"reporting_to"`
}

// AddUserRequest payload for POST /add.
type AddUserRequest struct {
	Role        string       `json:"role" validate:"required,oneof=admin manager staff"`
	FirstName   string       `json:"first_name" validate:"omitempty,max=20"`
	LastName    string       `json:"last_name" validate:"required,max=20"`
	Title       string       `json:"title" validate:"required,max=30"`
	PhoneNumber string       `json:"phone_number" validate:"omitempty,max=15"`
	DateOfBirth string       `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Email       string       `json:"email" validate:"required,email"`
	Username    string       `json:"username" validate:"required,max=20"`
	Options     *RoleOptions `json:"options"`
}

// DetailChange is the partial-update payload of an edit request; absent
// fields stay unchanged.
type DetailChange struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=20"`
	LastName    *string `json:"last_name" validate:"omitempty,max=20"`
	Title       *string `json:"title" validate:"omitempty,max=30"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

// ScopeChange names the role transition of an edit request. Promotion to
// admin is unsupported, so admin is not an accepted target.
type ScopeChange struct {
	To          string `json:"to" validate:"required,oneof=manager staff"`
	ReportingTo *int64 `json:"reporting_to"`
}

// EditUserRequest payload for PATCH /user/:id.
type EditUserRequest struct {
	ChangeType string        `json:"change_type" validate:"required,oneof=detail scope"`
	Detail     *DetailChange `json:"detail" validate:"required_if=ChangeType detail"`
	Scope      *ScopeChange  `json:"scope" validate:"required_if=ChangeType scope"`
}

// ParseDate parses a wire-format date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
