package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is an operator's access level. Each role carries its own
// immediate-posting limit; movements above it wait for a second approver.
type Role string

const (
	// RoleAdmin posts without a limit.
	RoleAdmin Role = "admin"

	// RoleManager approves and posts high-value movements.
	RoleManager Role = "manager"

	// RoleFinance handles back-office postings.
	RoleFinance Role = "finance"

	// RoleTeller handles counter transactions.
	RoleTeller Role = "teller"
)

var validRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleFinance: true,
	RoleTeller:  true,
}

// IsValid checks if the role is a valid role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// ApprovalLimits maps each role to the largest amount it may post
// without a second approver. Limits are institution configuration,
// injected once at bootstrap.
type ApprovalLimits map[Role]decimal.Decimal

// LimitFor returns the immediate-posting limit for a role.
func (l ApprovalLimits) LimitFor(r Role) (decimal.Decimal, error) {
	if !r.IsValid() {
		return decimal.Zero, ErrUnknownRole
	}

	limit, ok := l[r]
	if !ok {
		return decimal.Zero, ErrUnknownRole
	}

	return limit, nil
}

// RequiresApproval reports whether a movement of amount by role must
// wait for a second approver.
func (l ApprovalLimits) RequiresApproval(r Role, amount decimal.Decimal) (bool, error) {
	limit, err := l.LimitFor(r)
	if err != nil {
		return false, err
	}

	return amount.GreaterThan(limit), nil
}

// User represents a system operator.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
