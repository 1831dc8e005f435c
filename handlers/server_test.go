package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/utils"
)

func setupHandlerTest(t *testing.T) (*gorm.DB, *http.ServeMux) {
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

	mux := http.NewServeMux()
	NewAPIServer(db, nil).SetupRoutes(mux)
	return db, mux
}

func seedOperator(t *testing.T, db *gorm.DB) *models.Principal {
	t.Helper()
	user := &models.User{Name: "Operator", Phone: "0560000001", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Office{
		Name: "Office A", OwnerID: user.ID, Status: models.OfficeStatusApproved,
	}).Error)
	return &models.Principal{ID: user.ID, Phone: user.Phone, Roles: []string{"office"}, ActiveRole: "office"}
}

func doRequest(mux *http.ServeMux, principal *models.Principal, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req = req.WithContext(utils.SetPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func contractPayload() map[string]interface{} {
	return map[string]interface{}{
		"contract_no":          "CN-1001",
		"title_deed_no":        "TD-555",
		"annual_rent":          50000,
		"total_contract_value": 50000,
		"tenancy_start":        time.Now().Format(models.DateLayout),
		"tenancy_end":          time.Now().AddDate(1, 0, 0).Format(models.DateLayout),
		"tenants": []map[string]string{
			{"name": "Fahad Alotaibi", "phone": "0501234567"},
		},
		"lessors": []map[string]string{
			{"name": "Saleh Alqahtani", "phone": "0559876543"},
		},
		"property": map[string]interface{}{"property_type": "building", "city": "Riyadh"},
		"units": []map[string]interface{}{
			{"unit_no": "101", "unit_type": "apartment"},
		},
		"payments": []map[string]interface{}{
			{"due_date": time.Now().Format(models.DateLayout), "amount": 25000},
			{"due_date": time.Now().AddDate(0, 6, 0).Format(models.DateLayout), "amount": 25000},
		},
	}
}

func TestCreateContractEndpoint(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	rec := doRequest(mux, operator, http.MethodPost, "/contracts", contractPayload())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.NotZero(t, data["contract_id"])
	assert.NotZero(t, data["property_id"])
}

func TestCreateContractEndpoint_RequiresAuth(t *testing.T) {
	_, mux := setupHandlerTest(t)

	rec := doRequest(mux, nil, http.MethodPost, "/contracts", contractPayload())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateContractEndpoint_DuplicateNumber(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	rec := doRequest(mux, operator, http.MethodPost, "/contracts", contractPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	payload := contractPayload()
	payload["units"] = []map[string]interface{}{{"unit_no": "102"}}
	rec = doRequest(mux, operator, http.MethodPost, "/contracts", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "CONTRACT_NO_DUPLICATE", resp.Code)
}

func TestCreateContractEndpoint_InvalidBody(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	req := httptest.NewRequest(http.MethodPost, "/contracts", bytes.NewBufferString("{not json"))
	req = req.WithContext(utils.SetPrincipal(req.Context(), operator))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyContractsEndpoint(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	rec := doRequest(mux, operator, http.MethodPost, "/contracts", contractPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(mux, operator, http.MethodGet, "/contracts/my", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Total)

	// tenant named on the contract sees it too, via the international form
	tenant := &models.Principal{ID: 999, Phone: "+966501234567", Roles: []string{"tenant"}, ActiveRole: "tenant"}
	rec = doRequest(mux, tenant, http.MethodGet, "/contracts/my", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestGetContractEndpoint_ScopeQualified(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	rec := doRequest(mux, operator, http.MethodPost, "/contracts", contractPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	var created models.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	contractID := created.Data.(map[string]interface{})["contract_id"].(float64)

	path := fmt.Sprintf("/contracts/%d", int(contractID))
	rec = doRequest(mux, operator, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// operator of an unrelated office gets a 404
	other := &models.User{Name: "Other", Phone: "0560000002", IsActive: true}
	require.NoError(t, db.Create(other).Error)
	require.NoError(t, db.Create(&models.Office{
		Name: "Office B", OwnerID: other.ID, Status: models.OfficeStatusApproved,
	}).Error)
	otherPrincipal := &models.Principal{ID: other.ID, Phone: other.Phone, Roles: []string{"office"}, ActiveRole: "office"}
	rec = doRequest(mux, otherPrincipal, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateContractEndpoint(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	rec := doRequest(mux, operator, http.MethodPost, "/contracts", contractPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	var created models.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	contractID := int(created.Data.(map[string]interface{})["contract_id"].(float64))

	rec = doRequest(mux, operator, http.MethodPut, fmt.Sprintf("/contracts/%d", contractID),
		map[string]interface{}{"annual_rent": 60000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var contract models.Contract
	require.NoError(t, db.First(&contract, contractID).Error)
	assert.InDelta(t, 60000, contract.AnnualRent, 0.01)
}

func TestOfficesEndpoint_ForbiddenForTenant(t *testing.T) {
	_, mux := setupHandlerTest(t)

	tenant := &models.Principal{ID: 1, Phone: "0501234567", Roles: []string{"tenant"}, ActiveRole: "tenant"}
	rec := doRequest(mux, tenant, http.MethodGet, "/offices/my", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := setupHandlerTest(t)

	rec := doRequest(mux, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContractsEndpoint_MethodNotAllowed(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	rec := doRequest(mux, operator, http.MethodDelete, "/contracts", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestContractByPath_BadID(t *testing.T) {
	db, mux := setupHandlerTest(t)
	operator := seedOperator(t, db)

	rec := doRequest(mux, operator, http.MethodGet, "/contracts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
