package model

import "time"

// Role names as stored in the users.role column. TECHNICIAN and FINANCE
// accounts always hang beneath exactly one CUSTOMER_OWNER; ADMINISTRATOR
// and CUSTOMER_OWNER accounts have no parent.
const (
	RoleAdministrator = "ADMINISTRATOR"
	RoleCustomerOwner = "CUSTOMER_OWNER"
	RoleTechnician    = "TECHNICIAN"
	RoleFinance       = "FINANCE"
)

// User represents an application user record as stored in the `users`
// table. Handlers define separate response types with JSON tags; this
// struct is the repository-layer view of a row.
//
// Fields:
//  ID              – primary key identifier of the user.
//  Email           – unique email address.
//  PasswordHash    – bcrypt hashed password.
//  Role            – one of the Role* constants above.
//  CustomerOwnerID – owning customer owner for TECHNICIAN/FINANCE users,
//                    nil for administrators and customer owners.
//  IsActive        – whether the account is active.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64    // users.id
	Email           string    // users.email
	PasswordHash    string    // users.password_hash
	Role            string    // users.role
	CustomerOwnerID *uint64   // users.customer_owner_id (nullable)
	IsActive        bool      // users.is_active
	CreatedAt       time.Time // users.created_at
	UpdatedAt       time.Time // users.updated_at
}

// Role represents a row in the `roles` table. Static reference data; the
// users table stores the role name directly and this table exists for
// integrity and listing.
type Role struct {
	ID   uint8  // roles.id
	Name string // roles.name
}

// StaffRole reports whether the role name belongs to a user that is scoped
// beneath a customer owner.
func StaffRole(role string) bool {
	return role == RoleTechnician || role == RoleFinance
}
