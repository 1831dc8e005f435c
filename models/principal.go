package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// PrincipalClaims are the JWT claims this service accepts from the credential
// verifier. It trusts the verifier's output as-is apart from signature and
// role-membership checks.
type PrincipalClaims struct {
	UserID     uint     `json:"id"`
	Phone      string   `json:"phone"`
	Roles      []string `json:"roles"`
	ActiveRole string   `json:"activeRole"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller for one request. It is constructed per
// request from verified token claims and never persisted.
type Principal struct {
	ID         uint     `json:"id"`
	Phone      string   `json:"phone"`
	Roles      []string `json:"roles"`
	ActiveRole string   `json:"activeRole"`
}

// Kind returns the normalized variant of the principal's active role
func (p *Principal) Kind() RoleKind {
	return NormalizeRole(p.ActiveRole)
}

// HasRole reports whether the given role string is among the principal's
// declared roles.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
