// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Staff & Member Roles

// Role represents the authorization level granted to an account.
//
// Authorization is expressed as capabilities (what a role CAN do), not as
// string comparisons scattered across handlers. Callers ask questions like
// [Role.CanManageCatalog] instead of comparing against role literals.
type Role string

const (
	// Unrestricted system access, including destructive catalog operations
	RoleAdmin Role = "admin"

	// Can create and edit catalog records but not delete them
	RoleLibrarian Role = "librarian"

	// Default role for registered readers; no staff capabilities
	RoleMember Role = "member"
)

// IsValid reports whether the role is one of the known values.
// Unknown strings (from a tampered or stale JWT) carry no capabilities.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return true
	}
	return false
}

// # Capabilities

// IsStaff reports whether the role may access the admin surface at all.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

// CanManageCatalog reports whether the role may create and edit catalog
// records (books, categories, publishers, languages, contributors).
func (r Role) CanManageCatalog() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

// CanDeleteRecords reports whether the role may delete catalog records.
// Deletion is reserved for administrators.
func (r Role) CanDeleteRecords() bool {
	return r == RoleAdmin
}

// CanViewDashboard reports whether the role may view the admin dashboard.
func (r Role) CanViewDashboard() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

// CanManageUsers reports whether the role may administer other accounts.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}
