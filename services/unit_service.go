package services

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/pkg/errors"
)

var unitNoPattern = regexp.MustCompile(`^[0-9]+$`)

// UnitService validates unit numbers and guards against double-leasing
type UnitService struct {
	db *gorm.DB
}

// NewUnitService creates a new unit service
func NewUnitService(db *gorm.DB) *UnitService {
	return &UnitService{db: db}
}

// ValidateUnitNo enforces the digits-only unit numbering scheme
func (s *UnitService) ValidateUnitNo(unitNo string) error {
	if !unitNoPattern.MatchString(unitNo) {
		return errors.ValidationError("UNIT_NO_INVALID",
			fmt.Sprintf("unit number %q must contain digits only", unitNo))
	}
	return nil
}

// FindOrCreateUnit resolves the physical unit row for (property, unit_no),
// creating it with the supplied attributes when unseen.
func (s *UnitService) FindOrCreateUnit(tx *gorm.DB, propertyID uint, input models.UnitInput) (*models.Unit, error) {
	var unit models.Unit
	err := tx.Where("property_id = ? AND unit_no = ?", propertyID, input.UnitNo).Order("id").First(&unit).Error
	if err == nil {
		return &unit, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unit lookup failed: %w", err)
	}

	unit = models.Unit{
		PropertyID:      propertyID,
		UnitNo:          input.UnitNo,
		UnitType:        input.UnitType,
		UnitArea:        input.UnitArea,
		ElectricMeterNo: input.ElectricMeterNo,
		WaterMeterNo:    input.WaterMeterNo,
	}
	if err := tx.Create(&unit).Error; err != nil {
		return nil, fmt.Errorf("failed to create unit %q: %w", input.UnitNo, err)
	}
	return &unit, nil
}

// unitLease is the most recent lease row for one physical unit
type unitLease struct {
	ContractUnitID uint       `gorm:"column:contract_unit_id"`
	EndDate        *time.Time `gorm:"column:end_date"`
	OfficeID       *uint      `gorm:"column:office_id"`
}

// CheckUnitAvailable rejects leasing a unit that is still under an active
// lease in the same office scope. Only the most recent lease row of the unit
// counts: re-leases append rows, so the latest row is the unit's current state.
// A lease with no end date never expires on its own. Office scopes compare
// with null equal to null, so the shared bucket conflicts within itself but
// never with a real office.
func (s *UnitService) CheckUnitAvailable(tx *gorm.DB, propertyID uint, unitNo string, officeID *uint, now time.Time) error {
	var lease unitLease
	err := tx.Raw(`SELECT cu.id AS contract_unit_id, cu.end_date, c.office_id
		FROM contract_units cu
		JOIN units u ON u.id = cu.unit_id
		JOIN contracts c ON c.id = cu.contract_id
		WHERE u.property_id = ? AND u.unit_no = ?
		ORDER BY cu.id DESC LIMIT 1`, propertyID, unitNo).Scan(&lease).Error
	if err != nil {
		return fmt.Errorf("unit lease lookup failed: %w", err)
	}
	if lease.ContractUnitID == 0 {
		return nil
	}

	today := now.Truncate(24 * time.Hour)
	active := lease.EndDate == nil || !lease.EndDate.Before(today)
	if !active {
		return nil
	}
	if !sameOfficeScope(lease.OfficeID, officeID) {
		return nil
	}
	return errors.ConflictError("UNIT_ALREADY_LEASED",
		fmt.Sprintf("unit %s already has an active lease", unitNo))
}

func sameOfficeScope(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
