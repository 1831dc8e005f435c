package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/property-system/tenancy-api/models"
)

// setupTestDB opens a fresh in-memory database with the full schema and the
// seeded role rows.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Role{}, &models.UserRole{},
		&models.Office{}, &models.OfficeUser{},
		&models.Party{}, &models.Contract{}, &models.ContractParty{},
		&models.Property{}, &models.Unit{}, &models.ContractUnit{},
		&models.Payment{}, &models.Receipt{}, &models.BrokerageEntity{},
	))
	for _, name := range []string{
		models.RoleNameAdmin, models.RoleNameOffice, models.RoleNameOwner, models.RoleNameTenant,
	} {
		require.NoError(t, db.Create(&models.Role{RoleName: name}).Error)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, phone string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Phone: phone, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createOffice(t *testing.T, db *gorm.DB, name string, ownerID uint) *models.Office {
	t.Helper()
	office := &models.Office{Name: name, OwnerID: ownerID, Status: models.OfficeStatusApproved}
	require.NoError(t, db.Create(office).Error)
	return office
}

func asPrincipal(user *models.User, activeRole string) *models.Principal {
	return &models.Principal{
		ID:         user.ID,
		Phone:      user.Phone,
		Roles:      []string{activeRole},
		ActiveRole: activeRole,
	}
}

func newContractService(db *gorm.DB) *ContractService {
	scopes := NewScopeService()
	return NewContractService(db, scopes, NewOfficeService(db), NewPartyService(db), NewUnitService(db), nil)
}

func wireDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// baseContractRequest builds a minimal valid creation request; tests mutate it
func baseContractRequest() *models.CreateContractRequest {
	return &models.CreateContractRequest{
		ContractNo:         "CN-1001",
		TitleDeedNo:        "TD-555",
		AnnualRent:         50000,
		TotalContractValue: 50000,
		TenancyStart:       wireDate(time.Now()),
		TenancyEnd:         wireDate(time.Now().AddDate(1, 0, 0)),
		Tenants: []models.PartyInput{
			{Name: "Fahad Alotaibi", Phone: "0501234567", NationalID: "1111111111"},
		},
		Lessors: []models.PartyInput{
			{Name: "Saleh Alqahtani", Phone: "0559876543", NationalID: "2222222222"},
		},
		Property: models.PropertyInput{
			PropertyType: "building", PropertyUsage: "residential", NumUnits: 10, City: "Riyadh",
		},
		Units: []models.UnitInput{
			{UnitNo: "101", UnitType: "apartment", UnitArea: 120},
		},
		Payments: []models.PaymentInput{
			{DueDate: wireDate(time.Now()), Amount: 25000},
			{DueDate: wireDate(time.Now().AddDate(0, 6, 0)), Amount: 25000},
		},
	}
}
