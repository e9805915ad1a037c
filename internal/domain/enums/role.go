package enums

import (
	"fmt"
	"strings"
)

// Role separates regular accounts from operators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return r, nil
}
