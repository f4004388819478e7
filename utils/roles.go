package utils

import (
	"strings"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// RolePolicy resolves a principal's effective role. Allow-listed emails are
// always super admins; otherwise the token's role claim is trusted when it
// names a known role.
type RolePolicy struct {
	superAdmins map[string]struct{}
}

func NewRolePolicy(superAdminEmails []string) RolePolicy {
	set := make(map[string]struct{}, len(superAdminEmails))
	for _, e := range superAdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return RolePolicy{superAdmins: set}
}

func (p RolePolicy) Resolve(email, claimed string) string {
	if _, ok := p.superAdmins[strings.ToLower(strings.TrimSpace(email))]; ok {
		return RoleSuperAdmin
	}
	switch claimed {
	case RoleSuperAdmin, RoleAdmin:
		return claimed
	}
	return RoleUser
}

// IsAdminRole reports whether role may review KYC submissions.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
