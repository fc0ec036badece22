package agent

import (
	"fmt"
	"strings"
)

// Role identifies both a pipeline stage and its prompt strategy.
type Role string

const (
	RoleResearcher Role = "researcher"
	RoleWriter     Role = "writer"
	RoleCompliance Role = "compliance"
	RoleEnhancer   Role = "enhancer"
	RoleSEO        Role = "seo"
	RoleEditor     Role = "editor"
)

// Roles is the fixed role set in pipeline order.
var Roles = []Role{RoleResearcher, RoleWriter, RoleCompliance, RoleEnhancer, RoleSEO, RoleEditor}

// ReviewRoles run concurrently; their order is the canonical context-append order.
var ReviewRoles = []Role{RoleCompliance, RoleEnhancer, RoleSEO}

// DisplayName returns the human-readable name of the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleResearcher:
		return "Research & Keyword Analyst"
	case RoleWriter:
		return "Medical Content Drafter"
	case RoleCompliance:
		return "Medical Accuracy Reviewer"
	case RoleEnhancer:
		return "Readability & Engagement Expert"
	case RoleSEO:
		return "Health SEO Specialist"
	case RoleEditor:
		return "Executive Medical Editor"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the six known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts a case-insensitive name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown agent role: %q", s)
	}
	return r, nil
}
