package rbac

import (
	"context"
	"strings"
)

// Checker answers "may this role do this" against a role -> permissions map.
type Checker struct {
	RolePermissions map[string][]string
}

// NewChecker falls back to the package default policy when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	for _, granted := range c.RolePermissions[role] {
		if permMatches(granted, perm) {
			return true
		}
	}
	return false
}

// Any reports whether the role holds at least one of the permissions.
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// permMatches supports exact grants plus trailing-wildcard grants:
// "*" covers everything, "certificate:*" covers "certificate:approve".
func permMatches(granted, perm string) bool {
	if granted == "*" || granted == perm {
		return true
	}
	prefix, wild := strings.CutSuffix(granted, "*")
	return wild && strings.HasPrefix(perm, prefix)
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
