package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/pkg/errors"
)

// seedTwoOffices creates one contract per office with distinct tenants and
// lessors and returns everything the listing tests look at.
func seedTwoOffices(t *testing.T, db *gorm.DB) (operatorA, operatorB *models.User) {
	t.Helper()
	s := newContractService(db)

	operatorA = createUser(t, db, "Operator A", "0560000001")
	createOffice(t, db, "Office A", operatorA.ID)
	operatorB = createUser(t, db, "Operator B", "0560000002")
	createOffice(t, db, "Office B", operatorB.ID)

	reqA := baseContractRequest()
	_, err := s.CreateContract(context.Background(), asPrincipal(operatorA, "office"), reqA)
	require.NoError(t, err)

	reqB := baseContractRequest()
	reqB.ContractNo = "CN-9001"
	reqB.TitleDeedNo = "TD-777"
	reqB.Tenants = []models.PartyInput{{Name: "Nora Alharbi", Phone: "0561111111"}}
	reqB.Lessors = []models.PartyInput{{Name: "Majed Alshehri", Phone: "0562222222"}}
	_, err = s.CreateContract(context.Background(), asPrincipal(operatorB, "office"), reqB)
	require.NoError(t, err)
	return operatorA, operatorB
}

func TestMyContracts_OfficeOperatorSeesOwnOfficeOnly(t *testing.T) {
	db := setupTestDB(t)
	operatorA, operatorB := seedTwoOffices(t, db)
	listings := NewListingService(db, NewScopeService())

	resultA, err := listings.MyContracts(context.Background(), asPrincipal(operatorA, "office"))
	require.NoError(t, err)
	require.Len(t, resultA.Contracts, 1)
	assert.Equal(t, "Office A", resultA.Contracts[0].OfficeName)
	assert.Equal(t, "Fahad Alotaibi", resultA.Contracts[0].TenantName)
	assert.Equal(t, models.ContractStatusActive, resultA.Contracts[0].Status)
	require.NotNil(t, resultA.Contracts[0].DaysToEnd)
	assert.Equal(t, 1, resultA.ActiveCount)
	assert.InDelta(t, 50000, resultA.TotalAnnualRent, 0.01)

	resultB, err := listings.MyContracts(context.Background(), asPrincipal(operatorB, "office"))
	require.NoError(t, err)
	require.Len(t, resultB.Contracts, 1)
	assert.Equal(t, "Office B", resultB.Contracts[0].OfficeName)
}

func TestMyContracts_AdminSeesAll(t *testing.T) {
	db := setupTestDB(t)
	seedTwoOffices(t, db)
	listings := NewListingService(db, NewScopeService())

	admin := createUser(t, db, "Admin", "0569999999")
	result, err := listings.MyContracts(context.Background(), asPrincipal(admin, "admin"))
	require.NoError(t, err)
	assert.Len(t, result.Contracts, 2)
}

func TestMyContracts_TenantMatchesAcrossPhoneFormats(t *testing.T) {
	db := setupTestDB(t)
	seedTwoOffices(t, db)
	listings := NewListingService(db, NewScopeService())

	// tenant logs in with the international form of the phone stored on the
	// contract party
	tenant := &models.Principal{ID: 100, Phone: "+966501234567", ActiveRole: "tenant", Roles: []string{"tenant"}}
	result, err := listings.MyContracts(context.Background(), tenant)
	require.NoError(t, err)
	require.Len(t, result.Contracts, 1)
	assert.Equal(t, "Fahad Alotaibi", result.Contracts[0].TenantName)

	stranger := &models.Principal{ID: 101, Phone: "0508888888", ActiveRole: "tenant", Roles: []string{"tenant"}}
	result, err = listings.MyContracts(context.Background(), stranger)
	require.NoError(t, err)
	assert.Empty(t, result.Contracts)
}

func TestMyContracts_LessorSeesOwnedLeases(t *testing.T) {
	db := setupTestDB(t)
	seedTwoOffices(t, db)
	listings := NewListingService(db, NewScopeService())

	lessor := &models.Principal{ID: 102, Phone: "0559876543", ActiveRole: "owner", Roles: []string{"owner"}}
	result, err := listings.MyContracts(context.Background(), lessor)
	require.NoError(t, err)
	require.Len(t, result.Contracts, 1)
	assert.Equal(t, "Saleh Alqahtani", result.Contracts[0].LessorName)
}

func TestMyContracts_ExpiredStatusDerived(t *testing.T) {
	db := setupTestDB(t)
	s := newContractService(db)
	operator := createUser(t, db, "Operator", "0560000001")
	createOffice(t, db, "Office A", operator.ID)

	req := baseContractRequest()
	req.TenancyStart = wireDate(time.Now().AddDate(-2, 0, 0))
	req.TenancyEnd = wireDate(time.Now().AddDate(-1, 0, 0))
	_, err := s.CreateContract(context.Background(), asPrincipal(operator, "office"), req)
	require.NoError(t, err)

	listings := NewListingService(db, NewScopeService())
	result, err := listings.MyContracts(context.Background(), asPrincipal(operator, "office"))
	require.NoError(t, err)
	require.Len(t, result.Contracts, 1)
	assert.Equal(t, models.ContractStatusExpired, result.Contracts[0].Status)
	assert.Nil(t, result.Contracts[0].DaysToEnd)
	assert.Equal(t, 1, result.ExpiredCount)
	assert.Equal(t, 0, result.ActiveCount)
}

func TestMyPayments_FollowContractScope(t *testing.T) {
	db := setupTestDB(t)
	operatorA, _ := seedTwoOffices(t, db)
	listings := NewListingService(db, NewScopeService())

	payments, err := listings.MyPayments(context.Background(), asPrincipal(operatorA, "office"))
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	tenant := &models.Principal{ID: 100, Phone: "0501234567", ActiveRole: "tenant", Roles: []string{"tenant"}}
	payments, err = listings.MyPayments(context.Background(), tenant)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	stranger := &models.Principal{ID: 101, Phone: "0508888888", ActiveRole: "tenant", Roles: []string{"tenant"}}
	payments, err = listings.MyPayments(context.Background(), stranger)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestMyPropertiesAndUnits_FollowScope(t *testing.T) {
	db := setupTestDB(t)
	operatorA, _ := seedTwoOffices(t, db)
	listings := NewListingService(db, NewScopeService())

	properties, err := listings.MyProperties(context.Background(), asPrincipal(operatorA, "office"))
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "TD-555", properties[0].TitleDeedNo)

	units, err := listings.MyUnits(context.Background(), asPrincipal(operatorA, "office"))
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "101", units[0].UnitNo)

	tenant := &models.Principal{ID: 100, Phone: "0501234567", ActiveRole: "tenant", Roles: []string{"tenant"}}
	units, err = listings.MyUnits(context.Background(), tenant)
	require.NoError(t, err)
	assert.Len(t, units, 1)
}

func TestMyOffices_RoleRestricted(t *testing.T) {
	db := setupTestDB(t)
	operatorA, _ := seedTwoOffices(t, db)
	listings := NewListingService(db, NewScopeService())

	offices, err := listings.MyOffices(context.Background(), asPrincipal(operatorA, "office"))
	require.NoError(t, err)
	require.Len(t, offices, 1)
	assert.Equal(t, "Office A", offices[0].Name)

	tenant := &models.Principal{ID: 100, Phone: "0501234567", ActiveRole: "tenant", Roles: []string{"tenant"}}
	_, err = listings.MyOffices(context.Background(), tenant)
	require.Error(t, err)
	apiErr := errors.GetAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, errors.ErrorTypeForbidden, apiErr.Type)
}
