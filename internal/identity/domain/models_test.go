package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name   string
		user   User
		groups []string
		want   Role
	}{
		{
			name: "stored role wins over everything",
			user: User{Role: RoleStaff, Superuser: true},
			want: RoleStaff,
		},
		{
			name: "superuser without stored role is admin",
			user: User{Superuser: true},
			want: RoleAdmin,
		},
		{
			name:   "admin group membership",
			user:   User{},
			groups: []string{"staff", "admin"},
			want:   RoleAdmin,
		},
		{
			name:   "staff group membership",
			user:   User{},
			groups: []string{"staff"},
			want:   RoleStaff,
		},
		{
			name: "no signals falls back to customer",
			user: User{},
			want: RoleCustomer,
		},
		{
			name:   "unknown stored role is ignored",
			user:   User{Role: Role("root")},
			groups: []string{"staff"},
			want:   RoleStaff,
		},
		{
			name:   "unrelated groups do not grant roles",
			user:   User{},
			groups: []string{"billing", "ops"},
			want:   RoleCustomer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRole(tt.user, tt.groups))
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleStaff.Valid())
	assert.True(t, RoleCustomer.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("superuser").Valid())
}
