package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/marina-mooring-management/internal/model"
)

// OwnerRef is an explicit optional customer-owner selection, replacing a
// magic "unspecified" sentinel at every boundary. The zero value means the
// caller selected nothing.
type OwnerRef struct {
	ID        uint64
	Specified bool
}

// Owner returns a specified reference to the given customer owner id.
func Owner(id uint64) OwnerRef { return OwnerRef{ID: id, Specified: true} }

// NoOwner returns the unspecified reference.
func NoOwner() OwnerRef { return OwnerRef{} }

// Scope is the tenant filter granted by a successful authorization check.
// Repositories apply it as `WHERE customer_owner_id = ?`.
type Scope struct {
	OwnerID uint64
}

// UserFilter is the narrowed filter for user-management listings. Either
// Roles restricts by role alone (administrator listing the customer owners
// themselves) or OwnerID restricts to the staff beneath one owner.
type UserFilter struct {
	Roles   []string
	OwnerID uint64
}

// ScopeBuilder resolves {caller identity, requested owner} into a granted
// tenant filter or a typed rejection. It holds no per-request state.
type ScopeBuilder struct {
	users UserStore
}

// NewScopeBuilder builds a ScopeBuilder over the user store.
func NewScopeBuilder(users UserStore) *ScopeBuilder {
	return &ScopeBuilder{users: users}
}

// EntityScope authorizes an operation on business entities (moorings, boat
// yards, work orders) and returns the tenant filter to apply.
//
// An administrator must name a customer owner explicitly; a customer owner
// may only act on their own scope; every other role is rejected outright.
// Check order matters: the error for an omitted selection takes precedence
// over lookups, and the existence check precedes the role check on the
// selected user.
func (b *ScopeBuilder) EntityScope(ctx context.Context, ident Identity, owner OwnerRef) (Scope, error) {
	switch ident.Role {
	case model.RoleAdministrator:
		if !owner.Specified {
			return Scope{}, &ScopeRequiredError{}
		}
		selected, err := b.users.FindByID(ctx, owner.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Scope{}, &ResourceNotFoundError{Kind: "user", ID: owner.ID}
			}
			return Scope{}, err
		}
		if selected.Role != model.RoleCustomerOwner {
			return Scope{}, &NotCustomerOwnerError{UserID: selected.ID, Role: selected.Role}
		}
		return Scope{OwnerID: selected.ID}, nil

	case model.RoleCustomerOwner:
		if owner.Specified && owner.ID != ident.UserID {
			return Scope{}, &ScopeMismatchError{Expected: ident.UserID, Actual: owner.ID}
		}
		// Defensive: the caller's own row should always exist.
		if _, err := b.users.FindByID(ctx, ident.UserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Scope{}, &ResourceNotFoundError{Kind: "user", ID: ident.UserID}
			}
			return Scope{}, err
		}
		return Scope{OwnerID: ident.UserID}, nil

	default:
		return Scope{}, &NotAuthorizedError{Role: ident.Role}
	}
}

// UserListScope authorizes listing user accounts. This deliberately diverges
// from EntityScope for administrators: an omitted owner selection does not
// reject but instead narrows to the customer owners themselves, while a
// concrete selection narrows to the technician and finance staff beneath
// that owner.
func (b *ScopeBuilder) UserListScope(ctx context.Context, ident Identity, owner OwnerRef) (UserFilter, error) {
	switch ident.Role {
	case model.RoleAdministrator:
		if !owner.Specified {
			return UserFilter{Roles: []string{model.RoleCustomerOwner}}, nil
		}
		selected, err := b.users.FindByID(ctx, owner.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return UserFilter{}, &ResourceNotFoundError{Kind: "user", ID: owner.ID}
			}
			return UserFilter{}, err
		}
		if selected.Role != model.RoleCustomerOwner {
			return UserFilter{}, &NotCustomerOwnerError{UserID: selected.ID, Role: selected.Role}
		}
		return UserFilter{
			Roles:   []string{model.RoleTechnician, model.RoleFinance},
			OwnerID: selected.ID,
		}, nil

	case model.RoleCustomerOwner:
		if owner.Specified && owner.ID != ident.UserID {
			return UserFilter{}, &ScopeMismatchError{Expected: ident.UserID, Actual: owner.ID}
		}
		return UserFilter{
			Roles:   []string{model.RoleTechnician, model.RoleFinance},
			OwnerID: ident.UserID,
		}, nil

	default:
		return UserFilter{}, &NotAuthorizedError{Role: ident.Role}
	}
}

// AuthorizeUserDelete authorizes deleting one specific user record. On top
// of the entity rules, an administrator deleting a technician or finance
// user must name the owning customer owner, and the target's owner must
// match the resolved scope.
func (b *ScopeBuilder) AuthorizeUserDelete(ctx context.Context, ident Identity, owner OwnerRef, target model.User) error {
	switch ident.Role {
	case model.RoleAdministrator:
		if model.StaffRole(target.Role) {
			if !owner.Specified {
				return &ScopeRequiredError{}
			}
			scope, err := b.EntityScope(ctx, ident, owner)
			if err != nil {
				return err
			}
			if target.CustomerOwnerID == nil || *target.CustomerOwnerID != scope.OwnerID {
				actual := uint64(0)
				if target.CustomerOwnerID != nil {
					actual = *target.CustomerOwnerID
				}
				return &ScopeMismatchError{Expected: scope.OwnerID, Actual: actual}
			}
			return nil
		}
		// Administrators may remove customer owners directly.
		return nil

	case model.RoleCustomerOwner:
		scope, err := b.EntityScope(ctx, ident, owner)
		if err != nil {
			return err
		}
		if !model.StaffRole(target.Role) {
			return &NotAuthorizedError{Role: ident.Role}
		}
		if target.CustomerOwnerID == nil || *target.CustomerOwnerID != scope.OwnerID {
			actual := uint64(0)
			if target.CustomerOwnerID != nil {
				actual = *target.CustomerOwnerID
			}
			return &ScopeMismatchError{Expected: scope.OwnerID, Actual: actual}
		}
		return nil

	default:
		return &NotAuthorizedError{Role: ident.Role}
	}
}
