package services

import (
	"log/slog"

	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/phone"
	"github.com/property-system/tenancy-api/pkg/errors"
)

// ScopeService resolves the visibility predicate for a (principal, resource
// category) pair. Resolution is pure: no database access happens until the
// descriptor is applied to a query.
type ScopeService struct{}

// NewScopeService creates a new scope service
func NewScopeService() *ScopeService {
	return &ScopeService{}
}

// Subquery fragments shared across categories. Column references are
// table-qualified so the predicates survive being attached to joined queries.
// The phone comparison collapses the international prefix the same way rows
// were matched historically, since stored party phones mix formats.
const (
	memberOfficesSubquery = `SELECT o.id FROM offices o
		LEFT JOIN office_users ou ON ou.office_id = o.id AND ou.is_active = ?
		WHERE o.owner_id = ? OR ou.user_id = ?`

	partyContractsSubquery = `SELECT cp.contract_id FROM contract_parties cp
		JOIN parties p ON p.id = cp.party_id
		WHERE LOWER(TRIM(cp.role)) IN (?)
		AND REPLACE(REPLACE(p.phone, '+966', '0'), ' ', '') = ?`
)

// ResolveScope returns the visibility predicate for the principal's active
// role over the given resource category. Principals whose active role does not
// normalize to a known variant are rejected outright; an unrecognized role is
// never silently given an empty scope.
func (s *ScopeService) ResolveScope(principal *models.Principal, category models.ResourceCategory) (models.ScopeDescriptor, error) {
	kind := principal.Kind()
	if kind == models.RoleUnknown {
		slog.Warn("Scope requested for unrecognized role", "userId", principal.ID, "activeRole", principal.ActiveRole)
		return models.ScopeDescriptor{}, errors.ForbiddenError("role is not permitted to access this resource")
	}

	if kind == models.RolePlatformAdmin {
		return models.ScopeDescriptor{All: true}, nil
	}

	switch category {
	case models.CategoryContracts:
		return s.contractScope(principal, kind)
	case models.CategoryPayments:
		return s.childOfContractScope(principal, kind, "payments.contract_id")
	case models.CategoryReceipts:
		return s.childOfContractScope(principal, kind, "receipts.contract_id")
	case models.CategoryProperties:
		return s.propertyScope(principal, kind)
	case models.CategoryUnits:
		return s.unitScope(principal, kind)
	case models.CategoryOffices:
		return s.officeScope(principal, kind)
	default:
		return models.ScopeDescriptor{}, errors.ForbiddenError("unknown resource category")
	}
}

func (s *ScopeService) contractScope(principal *models.Principal, kind models.RoleKind) (models.ScopeDescriptor, error) {
	switch kind {
	case models.RoleOfficeOperator:
		return models.ScopeDescriptor{
			Where: "contracts.office_id IN (" + memberOfficesSubquery + ")",
			Args:  []interface{}{true, principal.ID, principal.ID},
		}, nil
	case models.RoleLessor:
		return s.partyScope(principal, "contracts.id", models.LessorRoleSet), nil
	case models.RoleTenant:
		return s.partyScope(principal, "contracts.id", models.TenantRoleSet), nil
	}
	return models.ScopeDescriptor{}, errors.ForbiddenError("role is not permitted to access contracts")
}

// childOfContractScope filters rows that hang off a contract (payments,
// receipts) by the contract visibility of the principal.
func (s *ScopeService) childOfContractScope(principal *models.Principal, kind models.RoleKind, column string) (models.ScopeDescriptor, error) {
	switch kind {
	case models.RoleOfficeOperator:
		return models.ScopeDescriptor{
			Where: column + " IN (SELECT c.id FROM contracts c WHERE c.office_id IN (" + memberOfficesSubquery + "))",
			Args:  []interface{}{true, principal.ID, principal.ID},
		}, nil
	case models.RoleLessor:
		return s.partyScope(principal, column, models.LessorRoleSet), nil
	case models.RoleTenant:
		return s.partyScope(principal, column, models.TenantRoleSet), nil
	}
	return models.ScopeDescriptor{}, errors.ForbiddenError("role is not permitted to access this resource")
}

func (s *ScopeService) propertyScope(principal *models.Principal, kind models.RoleKind) (models.ScopeDescriptor, error) {
	switch kind {
	case models.RoleOfficeOperator:
		return models.ScopeDescriptor{
			Where: "properties.office_id IN (" + memberOfficesSubquery + ")",
			Args:  []interface{}{true, principal.ID, principal.ID},
		}, nil
	case models.RoleLessor:
		return s.propertyPartyScope(principal, models.LessorRoleSet), nil
	case models.RoleTenant:
		return s.propertyPartyScope(principal, models.TenantRoleSet), nil
	}
	return models.ScopeDescriptor{}, errors.ForbiddenError("role is not permitted to access properties")
}

func (s *ScopeService) unitScope(principal *models.Principal, kind models.RoleKind) (models.ScopeDescriptor, error) {
	switch kind {
	case models.RoleOfficeOperator:
		return models.ScopeDescriptor{
			Where: "units.property_id IN (SELECT pr.id FROM properties pr WHERE pr.office_id IN (" + memberOfficesSubquery + "))",
			Args:  []interface{}{true, principal.ID, principal.ID},
		}, nil
	case models.RoleLessor:
		return s.unitPartyScope(principal, models.LessorRoleSet), nil
	case models.RoleTenant:
		return s.unitPartyScope(principal, models.TenantRoleSet), nil
	}
	return models.ScopeDescriptor{}, errors.ForbiddenError("role is not permitted to access units")
}

// officeScope supports office operators only; lessors and tenants are never
// office members through their natural role.
func (s *ScopeService) officeScope(principal *models.Principal, kind models.RoleKind) (models.ScopeDescriptor, error) {
	if kind == models.RoleOfficeOperator {
		return models.ScopeDescriptor{
			Where: "offices.id IN (" + memberOfficesSubquery + ")",
			Args:  []interface{}{true, principal.ID, principal.ID},
		}, nil
	}
	return models.ScopeDescriptor{}, errors.ForbiddenError("role is not permitted to access offices")
}

func (s *ScopeService) partyScope(principal *models.Principal, column string, roleSet []string) models.ScopeDescriptor {
	return models.ScopeDescriptor{
		Where: column + " IN (" + partyContractsSubquery + ")",
		Args:  []interface{}{roleSet, phone.Domestic(principal.Phone)},
	}
}

func (s *ScopeService) propertyPartyScope(principal *models.Principal, roleSet []string) models.ScopeDescriptor {
	return models.ScopeDescriptor{
		Where: "properties.id IN (SELECT c.property_id FROM contracts c WHERE c.property_id IS NOT NULL AND c.id IN (" + partyContractsSubquery + "))",
		Args:  []interface{}{roleSet, phone.Domestic(principal.Phone)},
	}
}

func (s *ScopeService) unitPartyScope(principal *models.Principal, roleSet []string) models.ScopeDescriptor {
	return models.ScopeDescriptor{
		Where: "units.id IN (SELECT cu.unit_id FROM contract_units cu WHERE cu.contract_id IN (" + partyContractsSubquery + "))",
		Args:  []interface{}{roleSet, phone.Domestic(principal.Phone)},
	}
}
