package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/audit"
	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/services"
	"github.com/property-system/tenancy-api/utils"
)

// APIServer manages all API routes and handlers
type APIServer struct {
	contractService *services.ContractService
	listingService  *services.ListingService
}

// NewAPIServer creates a new API server instance wired to the given database
func NewAPIServer(db *gorm.DB, auditor audit.Auditor) *APIServer {
	scopes := services.NewScopeService()
	contractService := services.NewContractService(
		db,
		scopes,
		services.NewOfficeService(db),
		services.NewPartyService(db),
		services.NewUnitService(db),
		auditor,
	)
	return &APIServer{
		contractService: contractService,
		listingService:  services.NewListingService(db, scopes),
	}
}

// NewAPIServerWithServices creates a server from pre-built services, for tests
func NewAPIServerWithServices(contractService *services.ContractService, listingService *services.ListingService) *APIServer {
	return &APIServer{
		contractService: contractService,
		listingService:  listingService,
	}
}

// SetupRoutes configures all API routes
func (s *APIServer) SetupRoutes(mux *http.ServeMux) {
	mux.Handle("/contracts", PanicRecoveryMiddleware(http.HandlerFunc(s.handleContracts)))
	mux.Handle("/contracts/", PanicRecoveryMiddleware(http.HandlerFunc(s.handleContractByPath)))

	mux.Handle("/payments/my", PanicRecoveryMiddleware(http.HandlerFunc(s.handleMyPayments)))
	mux.Handle("/receipts/my", PanicRecoveryMiddleware(http.HandlerFunc(s.handleMyReceipts)))
	mux.Handle("/properties/my", PanicRecoveryMiddleware(http.HandlerFunc(s.handleMyProperties)))
	mux.Handle("/units/my", PanicRecoveryMiddleware(http.HandlerFunc(s.handleMyUnits)))
	mux.Handle("/offices/my", PanicRecoveryMiddleware(http.HandlerFunc(s.handleMyOffices)))

	mux.HandleFunc("/health", s.handleHealth)
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleContracts handles /contracts (POST create)
func (s *APIServer) handleContracts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateContract(w, r)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleContractByPath routes /contracts/my and /contracts/{id}
func (s *APIServer) handleContractByPath(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSuffix(r.URL.Path, "/") == "/contracts/my" {
		if r.Method != http.MethodGet {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		s.handleMyContracts(w, r)
		return
	}

	id, ok := ExtractIDFromPath(r.URL.Path)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Contract ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetContract(w, r, id)
	case http.MethodPut:
		s.handleUpdateContract(w, r, id)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *APIServer) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.RequirePrincipal(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CreateContractRequest
	if err := ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.contractService.CreateContract(r.Context(), principal, &req)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Contract created",
		Data:    result,
	})
}

func (s *APIServer) handleMyContracts(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.RequirePrincipal(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := s.listingService.MyContracts(r.Context(), principal)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Total:   len(result.Contracts),
		Data:    result,
	})
}

func (s *APIServer) handleGetContract(w http.ResponseWriter, r *http.Request, id uint) {
	principal, err := utils.RequirePrincipal(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := s.contractService.GetContract(r.Context(), principal, id)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: details})
}

func (s *APIServer) handleUpdateContract(w http.ResponseWriter, r *http.Request, id uint) {
	principal, err := utils.RequirePrincipal(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.UpdateContractRequest
	if err := ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.contractService.UpdateContract(r.Context(), principal, id, &req); err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Contract updated"})
}

func (s *APIServer) handleMyPayments(w http.ResponseWriter, r *http.Request) {
	s.handleListing(w, r, func(r *http.Request, p *models.Principal) (interface{}, int, error) {
		payments, err := s.listingService.MyPayments(r.Context(), p)
		return payments, len(payments), err
	})
}

func (s *APIServer) handleMyReceipts(w http.ResponseWriter, r *http.Request) {
	s.handleListing(w, r, func(r *http.Request, p *models.Principal) (interface{}, int, error) {
		receipts, err := s.listingService.MyReceipts(r.Context(), p)
		return receipts, len(receipts), err
	})
}

func (s *APIServer) handleMyProperties(w http.ResponseWriter, r *http.Request) {
	s.handleListing(w, r, func(r *http.Request, p *models.Principal) (interface{}, int, error) {
		properties, err := s.listingService.MyProperties(r.Context(), p)
		return properties, len(properties), err
	})
}

func (s *APIServer) handleMyUnits(w http.ResponseWriter, r *http.Request) {
	s.handleListing(w, r, func(r *http.Request, p *models.Principal) (interface{}, int, error) {
		units, err := s.listingService.MyUnits(r.Context(), p)
		return units, len(units), err
	})
}

func (s *APIServer) handleMyOffices(w http.ResponseWriter, r *http.Request) {
	s.handleListing(w, r, func(r *http.Request, p *models.Principal) (interface{}, int, error) {
		offices, err := s.listingService.MyOffices(r.Context(), p)
		return offices, len(offices), err
	})
}

// handleListing is the shared shape of the scope-filtered read endpoints
func (s *APIServer) handleListing(w http.ResponseWriter, r *http.Request, list func(*http.Request, *models.Principal) (interface{}, int, error)) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	principal, err := utils.RequirePrincipal(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	items, total, err := list(r, principal)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Total: total, Data: items})
}
