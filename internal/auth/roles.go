// Package auth - roles.go defines the staff roles and the HasRole/HasAnyRole
// helpers used by the role middleware.
package auth

import "fmt"

// Role is the access level of a staff account
type Role string

const (
	// RoleAdmin manages accounts and every catalog
	RoleAdmin Role = "admin"
	// RoleCoordinador manages students, groups and follow-up records, and reads the audit trail
	RoleCoordinador Role = "coordinador"
	// RoleDocente reads catalogs and records grades and attendance for their own groups
	RoleDocente Role = "docente"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleCoordinador, RoleDocente}
}

// ValidateRole checks that r is a known role
func ValidateRole(r string) error {
	for _, role := range AllRoles() {
		if string(role) == r {
			return nil
		}
	}
	return fmt.Errorf("invalid role: %s", r)
}

// HasRole reports whether userRole satisfies required. Admin satisfies every role.
func HasRole(userRole, required Role) bool {
	return userRole == required || userRole == RoleAdmin
}

// HasAnyRole checks if userRole satisfies at least one of the required roles
func HasAnyRole(userRole Role, required []Role) bool {
	for _, r := range required {
		if HasRole(userRole, r) {
			return true
		}
	}
	return false
}

// AuditReaders are the roles allowed to read the activity log
var AuditReaders = []Role{RoleAdmin, RoleCoordinador}

// Writers are the roles allowed to create, update and delete tracked entities
var Writers = []Role{RoleAdmin, RoleCoordinador}
