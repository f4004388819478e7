package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePolicyResolve(t *testing.T) {
	p := NewRolePolicy([]string{" Owner@OneClick.in ", ""})

	tests := []struct {
		name    string
		email   string
		claimed string
		want    string
	}{
		{"allow-listed email wins", "owner@oneclick.in", RoleUser, RoleSuperAdmin},
		{"allow-list is case insensitive", "OWNER@oneclick.in", "", RoleSuperAdmin},
		{"admin claim trusted", "ops@oneclick.in", RoleAdmin, RoleAdmin},
		{"super admin claim trusted", "ops@oneclick.in", RoleSuperAdmin, RoleSuperAdmin},
		{"unknown claim is user", "agent@oneclick.in", "root", RoleUser},
		{"no claim is user", "agent@oneclick.in", "", RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Resolve(tt.email, tt.claimed))
		})
	}
}

func TestIsAdminRole(t *testing.T) {
	assert.True(t, IsAdminRole(RoleAdmin))
	assert.True(t, IsAdminRole(RoleSuperAdmin))
	assert.False(t, IsAdminRole(RoleUser))
	assert.False(t, IsAdminRole(""))
}
