package models

import "strings"

// RoleKind is the closed set of role variants the access layer reasons about.
// Token claims and database rows carry free-form role strings (including
// localized spellings); NormalizeRole maps them onto this set before any
// scope logic runs.
type RoleKind string

const (
	RolePlatformAdmin  RoleKind = "platform_admin"
	RoleOfficeOperator RoleKind = "office_operator"
	RoleLessor         RoleKind = "lessor"
	RoleTenant         RoleKind = "tenant"
	RoleUnknown        RoleKind = "unknown"
)

// roleSpellings maps every known role string onto its variant
var roleSpellings = map[string]RoleKind{
	"admin":             RolePlatformAdmin,
	"super_admin":       RolePlatformAdmin,
	"office":            RoleOfficeOperator,
	"office_admin":      RoleOfficeOperator,
	"office_user":       RoleOfficeOperator,
	"self_office_admin": RoleOfficeOperator,
	"owner":             RoleLessor,
	"lessor":            RoleLessor,
	"مالك":              RoleLessor,
	"tenant":            RoleTenant,
	"مستأجر":            RoleTenant,
	"مستاجر":            RoleTenant,
}

// NormalizeRole maps a raw role string onto its RoleKind. Unrecognized roles
// normalize to RoleUnknown, which every resolver rejects explicitly.
func NormalizeRole(raw string) RoleKind {
	if kind, ok := roleSpellings[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return kind
	}
	return RoleUnknown
}

// String implements fmt.Stringer
func (r RoleKind) String() string {
	return string(r)
}
