package authz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole reports a role value outside the closed set.
var ErrUnknownRole = errors.New("authz: unknown role")

// Role is the closed set of principal roles. Every principal carries exactly
// one role at a time; reassignment is an administrative action with no
// self-service path.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProvider  Role = "provider"
	RoleReception Role = "reception"
	RoleClient    Role = "client"
)

// roleAliasStaff is the legacy "staff" role kept in old seed data and the
// /staff route namespace. It normalizes to reception everywhere.
const roleAliasStaff = "staff"

// Roles lists every canonical role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleProvider, RoleReception, RoleClient}
}

// ParseRole normalizes a stored role value. The staff alias folds into
// reception; anything else outside the closed set is an error.
func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleProvider):
		return RoleProvider, nil
	case string(RoleReception), roleAliasStaff:
		return RoleReception, nil
	case string(RoleClient):
		return RoleClient, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownRole, value)
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RoleReception, RoleClient:
		return true
	}
	return false
}

// Namespace returns the route prefix generated for the role.
func (r Role) Namespace() string {
	return "/" + string(r)
}
