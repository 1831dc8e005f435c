package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/pkg/errors"
)

// ListingService serves the scope-filtered "/my" read endpoints. Every listing
// goes through the one scope resolver; there is no second authorization path.
type ListingService struct {
	db     *gorm.DB
	scopes *ScopeService
}

// NewListingService creates a new listing service
func NewListingService(db *gorm.DB, scopes *ScopeService) *ListingService {
	return &ListingService{db: db, scopes: scopes}
}

// ContractListResult bundles the visible contracts with their financial totals
type ContractListResult struct {
	Contracts       []models.ContractSummary `json:"contracts"`
	ActiveCount     int                      `json:"active_count"`
	ExpiredCount    int                      `json:"expired_count"`
	TotalAnnualRent float64                  `json:"total_annual_rent"`
}

// quoteRoleSet renders a role-set as a SQL IN list. The sets are compile-time
// constants, never caller input.
func quoteRoleSet(roles []string) string {
	quoted := make([]string, len(roles))
	for i, r := range roles {
		quoted[i] = "'" + r + "'"
	}
	return strings.Join(quoted, ", ")
}

// MyContracts lists the contracts visible to the principal, with lifecycle
// state derived from the tenancy window.
func (s *ListingService) MyContracts(ctx context.Context, principal *models.Principal) (*ContractListResult, error) {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryContracts)
	if err != nil {
		return nil, err
	}

	tenantNameSub := `(SELECT p.name FROM contract_parties cp JOIN parties p ON p.id = cp.party_id
		WHERE cp.contract_id = contracts.id AND LOWER(TRIM(cp.role)) IN (` + quoteRoleSet(models.TenantRoleSet) + `)
		ORDER BY cp.id LIMIT 1)`
	tenantPhoneSub := `(SELECT p.phone FROM contract_parties cp JOIN parties p ON p.id = cp.party_id
		WHERE cp.contract_id = contracts.id AND LOWER(TRIM(cp.role)) IN (` + quoteRoleSet(models.TenantRoleSet) + `)
		ORDER BY cp.id LIMIT 1)`
	lessorNameSub := `(SELECT p.name FROM contract_parties cp JOIN parties p ON p.id = cp.party_id
		WHERE cp.contract_id = contracts.id AND LOWER(TRIM(cp.role)) IN (` + quoteRoleSet(models.LessorRoleSet) + `)
		ORDER BY cp.id LIMIT 1)`

	var summaries []models.ContractSummary
	q := s.db.WithContext(ctx).Model(&models.Contract{}).
		Select(`contracts.id, contracts.contract_no, contracts.annual_rent,
			contracts.tenancy_start, contracts.tenancy_end, contracts.property_id,
			COALESCE(o.name, '') AS office_name,
			COALESCE(` + tenantNameSub + `, '') AS tenant_name,
			COALESCE(` + tenantPhoneSub + `, '') AS tenant_phone,
			COALESCE(` + lessorNameSub + `, '') AS lessor_name`).
		Joins("LEFT JOIN offices o ON o.id = contracts.office_id").
		Order("contracts.id DESC")
	if err := scope.Apply(q).Scan(&summaries).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "list contracts")
	}

	now := time.Now()
	today := now.Truncate(24 * time.Hour)
	result := &ContractListResult{Contracts: summaries}
	for i := range summaries {
		c := &summaries[i]
		c.Status = models.ContractStatusActive
		if c.TenancyEnd != nil {
			if c.TenancyEnd.Before(today) {
				c.Status = models.ContractStatusExpired
			} else {
				days := int(c.TenancyEnd.Sub(today).Hours() / 24)
				c.DaysToEnd = &days
			}
		}
		if c.Status == models.ContractStatusActive {
			result.ActiveCount++
			result.TotalAnnualRent += c.AnnualRent
		} else {
			result.ExpiredCount++
		}
	}
	return result, nil
}

// MyPayments lists the payments of every contract visible to the principal
func (s *ListingService) MyPayments(ctx context.Context, principal *models.Principal) ([]models.Payment, error) {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryPayments)
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	q := s.db.WithContext(ctx).Model(&models.Payment{}).Order("payments.due_date")
	if err := scope.Apply(q).Find(&payments).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "list payments")
	}
	return payments, nil
}

// MyReceipts lists the receipts of every contract visible to the principal
func (s *ListingService) MyReceipts(ctx context.Context, principal *models.Principal) ([]models.Receipt, error) {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryReceipts)
	if err != nil {
		return nil, err
	}
	var receipts []models.Receipt
	q := s.db.WithContext(ctx).Model(&models.Receipt{}).Order("receipts.id DESC")
	if err := scope.Apply(q).Find(&receipts).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "list receipts")
	}
	return receipts, nil
}

// MyProperties lists the properties visible to the principal
func (s *ListingService) MyProperties(ctx context.Context, principal *models.Principal) ([]models.Property, error) {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryProperties)
	if err != nil {
		return nil, err
	}
	var properties []models.Property
	q := s.db.WithContext(ctx).Model(&models.Property{}).Order("properties.id")
	if err := scope.Apply(q).Find(&properties).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "list properties")
	}
	return properties, nil
}

// MyUnits lists the units visible to the principal
func (s *ListingService) MyUnits(ctx context.Context, principal *models.Principal) ([]models.Unit, error) {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryUnits)
	if err != nil {
		return nil, err
	}
	var units []models.Unit
	q := s.db.WithContext(ctx).Model(&models.Unit{}).Order("units.id")
	if err := scope.Apply(q).Find(&units).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "list units")
	}
	return units, nil
}

// MyOffices lists the offices the principal belongs to. Lessor and tenant
// roles have no office membership and are rejected by the resolver.
func (s *ListingService) MyOffices(ctx context.Context, principal *models.Principal) ([]models.Office, error) {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryOffices)
	if err != nil {
		return nil, err
	}
	var offices []models.Office
	q := s.db.WithContext(ctx).Model(&models.Office{}).Order("offices.id")
	if err := scope.Apply(q).Find(&offices).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "list offices")
	}
	return offices, nil
}
