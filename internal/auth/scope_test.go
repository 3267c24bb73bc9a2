package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iliyamo/marina-mooring-management/internal/model"
)

func scopeUsers() *memUserStore {
	owner10 := uint64(10)
	owner11 := uint64(11)
	return &memUserStore{users: map[uint64]model.User{
		1:  {ID: 1, Email: "admin@marina.test", Role: model.RoleAdministrator, IsActive: true},
		10: {ID: 10, Email: "owner10@marina.test", Role: model.RoleCustomerOwner, IsActive: true},
		11: {ID: 11, Email: "owner11@marina.test", Role: model.RoleCustomerOwner, IsActive: true},
		20: {ID: 20, Email: "tech@marina.test", Role: model.RoleTechnician, CustomerOwnerID: &owner10, IsActive: true},
		21: {ID: 21, Email: "fin@marina.test", Role: model.RoleFinance, CustomerOwnerID: &owner11, IsActive: true},
	}}
}

var (
	adminIdent = Identity{UserID: 1, Email: "admin@marina.test", Role: model.RoleAdministrator}
	ownerIdent = Identity{UserID: 10, Email: "owner10@marina.test", Role: model.RoleCustomerOwner}
	techIdent  = Identity{UserID: 20, Email: "tech@marina.test", Role: model.RoleTechnician}
)

func TestEntityScope(t *testing.T) {
	b := NewScopeBuilder(scopeUsers())
	ctx := context.Background()

	tests := []struct {
		name      string
		ident     Identity
		owner     OwnerRef
		wantScope uint64
		wantErr   interface{}
	}{
		{"admin with owner", adminIdent, Owner(10), 10, nil},
		{"admin without owner", adminIdent, NoOwner(), 0, &ScopeRequiredError{}},
		{"admin selects missing user", adminIdent, Owner(99), 0, &ResourceNotFoundError{}},
		{"admin selects non-owner", adminIdent, Owner(20), 0, &NotCustomerOwnerError{}},
		{"owner implicit self", ownerIdent, NoOwner(), 10, nil},
		{"owner explicit self", ownerIdent, Owner(10), 10, nil},
		{"owner names other owner", ownerIdent, Owner(11), 0, &ScopeMismatchError{}},
		{"technician rejected", techIdent, NoOwner(), 0, &NotAuthorizedError{}},
		{"technician rejected with owner", techIdent, Owner(10), 0, &NotAuthorizedError{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scope, err := b.EntityScope(ctx, tc.ident, tc.owner)
			checkScopeErr(t, err, tc.wantErr)
			if tc.wantErr == nil && scope.OwnerID != tc.wantScope {
				t.Errorf("scope owner = %d, want %d", scope.OwnerID, tc.wantScope)
			}
		})
	}
}

func TestEntityScopeMessages(t *testing.T) {
	b := NewScopeBuilder(scopeUsers())
	ctx := context.Background()

	_, err := b.EntityScope(ctx, adminIdent, NoOwner())
	if err == nil || !strings.Contains(err.Error(), "must be selected") {
		t.Errorf("omitted selection error = %v", err)
	}

	_, err = b.EntityScope(ctx, ownerIdent, Owner(11))
	if err == nil || !strings.Contains(err.Error(), "different customer owner") {
		t.Errorf("mismatch error = %v", err)
	}

	_, err = b.EntityScope(ctx, adminIdent, Owner(20))
	if err == nil || !strings.Contains(err.Error(), "not a customer owner") {
		t.Errorf("non-owner selection error = %v", err)
	}

	_, err = b.EntityScope(ctx, adminIdent, Owner(99))
	if err == nil || !strings.Contains(err.Error(), "no such user: 99") {
		t.Errorf("missing user error = %v", err)
	}
}

func TestUserListScope(t *testing.T) {
	b := NewScopeBuilder(scopeUsers())
	ctx := context.Background()

	tests := []struct {
		name      string
		ident     Identity
		owner     OwnerRef
		wantRoles []string
		wantOwner uint64
		wantErr   interface{}
	}{
		{"admin without owner lists owners", adminIdent, NoOwner(),
			[]string{model.RoleCustomerOwner}, 0, nil},
		{"admin with owner lists staff", adminIdent, Owner(10),
			[]string{model.RoleTechnician, model.RoleFinance}, 10, nil},
		{"admin selects non-owner", adminIdent, Owner(20), nil, 0, &NotCustomerOwnerError{}},
		{"admin selects missing", adminIdent, Owner(99), nil, 0, &ResourceNotFoundError{}},
		{"owner lists own staff", ownerIdent, NoOwner(),
			[]string{model.RoleTechnician, model.RoleFinance}, 10, nil},
		{"owner names other owner", ownerIdent, Owner(11), nil, 0, &ScopeMismatchError{}},
		{"technician rejected", techIdent, NoOwner(), nil, 0, &NotAuthorizedError{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			filter, err := b.UserListScope(ctx, tc.ident, tc.owner)
			checkScopeErr(t, err, tc.wantErr)
			if tc.wantErr != nil {
				return
			}
			if len(filter.Roles) != len(tc.wantRoles) {
				t.Fatalf("roles = %v, want %v", filter.Roles, tc.wantRoles)
			}
			for i, r := range tc.wantRoles {
				if filter.Roles[i] != r {
					t.Errorf("roles = %v, want %v", filter.Roles, tc.wantRoles)
				}
			}
			if filter.OwnerID != tc.wantOwner {
				t.Errorf("filter owner = %d, want %d", filter.OwnerID, tc.wantOwner)
			}
		})
	}
}

func TestAuthorizeUserDelete(t *testing.T) {
	store := scopeUsers()
	b := NewScopeBuilder(store)
	ctx := context.Background()

	tech10 := store.users[20]
	fin11 := store.users[21]
	owner11 := store.users[11]

	tests := []struct {
		name    string
		ident   Identity
		owner   OwnerRef
		target  model.User
		wantErr interface{}
	}{
		{"admin deletes owner directly", adminIdent, NoOwner(), owner11, nil},
		{"admin deletes staff with owner", adminIdent, Owner(10), tech10, nil},
		{"admin deletes staff without owner", adminIdent, NoOwner(), tech10, &ScopeRequiredError{}},
		{"admin names wrong owner for staff", adminIdent, Owner(10), fin11, &ScopeMismatchError{}},
		{"owner deletes own staff", ownerIdent, NoOwner(), tech10, nil},
		{"owner deletes foreign staff", ownerIdent, NoOwner(), fin11, &ScopeMismatchError{}},
		{"owner deletes another owner", ownerIdent, NoOwner(), owner11, &NotAuthorizedError{}},
		{"technician rejected", techIdent, NoOwner(), tech10, &NotAuthorizedError{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := b.AuthorizeUserDelete(ctx, tc.ident, tc.owner, tc.target)
			checkScopeErr(t, err, tc.wantErr)
		})
	}
}

// checkScopeErr asserts err matches the wanted error type (or nil).
func checkScopeErr(t *testing.T, err error, want interface{}) {
	t.Helper()
	if want == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("want %T, got nil", want)
	}
	switch want.(type) {
	case *ScopeRequiredError:
		var e *ScopeRequiredError
		if !errors.As(err, &e) {
			t.Fatalf("want ScopeRequiredError, got %v", err)
		}
	case *ScopeMismatchError:
		var e *ScopeMismatchError
		if !errors.As(err, &e) {
			t.Fatalf("want ScopeMismatchError, got %v", err)
		}
	case *NotCustomerOwnerError:
		var e *NotCustomerOwnerError
		if !errors.As(err, &e) {
			t.Fatalf("want NotCustomerOwnerError, got %v", err)
		}
	case *NotAuthorizedError:
		var e *NotAuthorizedError
		if !errors.As(err, &e) {
			t.Fatalf("want NotAuthorizedError, got %v", err)
		}
	case *ResourceNotFoundError:
		var e *ResourceNotFoundError
		if !errors.As(err, &e) {
			t.Fatalf("want ResourceNotFoundError, got %v", err)
		}
	default:
		t.Fatalf("unhandled want type %T", want)
	}
}
