package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/audit"
	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/pkg/errors"
)

// ContractService runs the contract transaction and serves contract reads
type ContractService struct {
	db      *gorm.DB
	scopes  *ScopeService
	offices *OfficeService
	parties *PartyService
	units   *UnitService
	auditor audit.Auditor
}

// NewContractService creates a new contract service
func NewContractService(db *gorm.DB, scopes *ScopeService, offices *OfficeService, parties *PartyService, units *UnitService, auditor audit.Auditor) *ContractService {
	return &ContractService{
		db:      db,
		scopes:  scopes,
		offices: offices,
		parties: parties,
		units:   units,
		auditor: auditor,
	}
}

// CreateContract creates a contract and every dependent row in one database
// transaction. Any failure at any step rolls back all of it; there is no
// partial contract state.
func (s *ContractService) CreateContract(ctx context.Context, principal *models.Principal, req *models.CreateContractRequest) (*models.CreateContractResult, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	tenancyStart, err := models.ParseDate(req.TenancyStart)
	if err != nil {
		return nil, errors.ValidationError("DATE_INVALID", "tenancy_start must be YYYY-MM-DD")
	}
	tenancyEnd, err := models.ParseDate(req.TenancyEnd)
	if err != nil {
		return nil, errors.ValidationError("DATE_INVALID", "tenancy_end must be YYYY-MM-DD")
	}

	var result models.CreateContractResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		officeID, err := s.offices.ResolveOfficeForUser(tx, principal.ID)
		if err != nil {
			return err
		}

		contractNo := strings.TrimSpace(req.ContractNo)
		if contractNo != "" {
			if err := s.checkDuplicateContractNo(tx, contractNo, officeID, 0); err != nil {
				return err
			}
		}

		if err := s.validatePaymentSum(req); err != nil {
			return err
		}

		contract := &models.Contract{
			TitleDeedNo:        req.TitleDeedNo,
			OfficeID:           officeID,
			TenancyStart:       tenancyStart,
			TenancyEnd:         tenancyEnd,
			AnnualRent:         req.AnnualRent,
			TotalContractValue: req.TotalContractValue,
			CreatedBy:          principal.ID,
		}
		if contractNo != "" {
			contract.ContractNo = &contractNo
		}
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		property, err := s.resolveOrCreateProperty(tx, req, officeID)
		if err != nil {
			return err
		}
		if err := tx.Model(contract).Update("property_id", property.ID).Error; err != nil {
			return fmt.Errorf("failed to link property: %w", err)
		}
		contract.PropertyID = &property.ID

		if err := s.attachParties(tx, contract.ID, req.Tenants, models.PartyRoleTenant, models.RoleNameTenant); err != nil {
			return err
		}
		if err := s.attachParties(tx, contract.ID, req.Lessors, models.PartyRoleLessor, models.RoleNameOwner); err != nil {
			return err
		}

		if req.BrokerageEntity != nil && strings.TrimSpace(req.BrokerageEntity.CrNo) != "" {
			broker, err := s.resolveOrCreateBroker(tx, req.BrokerageEntity, contract.ID)
			if err != nil {
				return err
			}
			if err := tx.Model(contract).Update("broker_id", broker.ID).Error; err != nil {
				return fmt.Errorf("failed to link broker: %w", err)
			}
		}

		now := time.Now()
		for _, unitInput := range req.Units {
			if err := s.units.ValidateUnitNo(unitInput.UnitNo); err != nil {
				return err
			}
			unit, err := s.units.FindOrCreateUnit(tx, property.ID, unitInput)
			if err != nil {
				return err
			}
			if err := s.units.CheckUnitAvailable(tx, property.ID, unit.UnitNo, officeID, now); err != nil {
				return err
			}
			link := &models.ContractUnit{
				ContractID: contract.ID,
				UnitID:     unit.ID,
				StartDate:  tenancyStart,
				EndDate:    tenancyEnd,
			}
			if err := tx.Create(link).Error; err != nil {
				return fmt.Errorf("failed to link unit %q: %w", unit.UnitNo, err)
			}
		}

		if err := s.insertPaymentSchedule(tx, contract.ID, req.Payments); err != nil {
			return err
		}

		result = models.CreateContractResult{
			ContractID: contract.ID,
			PropertyID: property.ID,
			OfficeID:   officeID,
		}
		return nil
	})
	if txErr != nil {
		if apiErr := errors.GetAPIError(txErr); apiErr != nil {
			return nil, apiErr
		}
		return nil, errors.HandleDatabaseError(txErr, "create contract")
	}

	s.emitAuditEvent(ctx, principal, audit.ActionInsert, "contracts", result.ContractID,
		nil, &result, "contract created with dependents")

	slog.Info("Contract created",
		"contractId", result.ContractID,
		"propertyId", result.PropertyID,
		"createdBy", principal.ID)
	return &result, nil
}

func (s *ContractService) validateCreateRequest(req *models.CreateContractRequest) error {
	if strings.TrimSpace(req.TitleDeedNo) == "" {
		return errors.ValidationError("TITLE_DEED_REQUIRED", "title_deed_no is required")
	}
	if len(req.Tenants) == 0 {
		return errors.ValidationError("TENANT_REQUIRED", "at least one tenant is required")
	}
	if len(req.Lessors) == 0 {
		return errors.ValidationError("LESSOR_REQUIRED", "at least one lessor is required")
	}
	return nil
}

// checkDuplicateContractNo enforces contract number uniqueness within one
// office scope. The null-office bucket is one scope of its own. excludeID
// skips the contract being updated.
func (s *ContractService) checkDuplicateContractNo(tx *gorm.DB, contractNo string, officeID *uint, excludeID uint) error {
	q := tx.Model(&models.Contract{}).Where("contract_no = ?", contractNo)
	if officeID == nil {
		q = q.Where("office_id IS NULL")
	} else {
		q = q.Where("office_id = ?", *officeID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	if count > 0 {
		return errors.ConflictError("CONTRACT_NO_DUPLICATE",
			fmt.Sprintf("contract number %q already exists in this office", contractNo))
	}
	return nil
}

// validatePaymentSum requires the installments to add up to the contract value
// exactly. The check only runs when both sides are supplied.
func (s *ContractService) validatePaymentSum(req *models.CreateContractRequest) error {
	if req.TotalContractValue <= 0 || len(req.Payments) == 0 {
		return nil
	}
	var sum float64
	for _, p := range req.Payments {
		sum += p.Amount
	}
	if sum != req.TotalContractValue {
		return errors.ValidationError("PAYMENT_SUM_MISMATCH",
			fmt.Sprintf("payments add up to %.2f but total contract value is %.2f", sum, req.TotalContractValue))
	}
	return nil
}

func (s *ContractService) resolveOrCreateProperty(tx *gorm.DB, req *models.CreateContractRequest, officeID *uint) (*models.Property, error) {
	q := tx.Where("title_deed_no = ?", req.TitleDeedNo)
	if officeID == nil {
		q = q.Where("office_id IS NULL")
	} else {
		q = q.Where("office_id = ?", *officeID)
	}
	var property models.Property
	err := q.Order("id").First(&property).Error
	if err == nil {
		return &property, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("property lookup failed: %w", err)
	}

	property = models.Property{
		TitleDeedNo:     req.TitleDeedNo,
		PropertyType:    req.Property.PropertyType,
		PropertyUsage:   req.Property.PropertyUsage,
		NumUnits:        req.Property.NumUnits,
		NationalAddress: req.Property.NationalAddress,
		City:            req.Property.City,
		OfficeID:        officeID,
	}
	if err := tx.Create(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return &property, nil
}

// attachParties resolves each party, links it to the contract and provisions
// its login account with the natural role for its side of the lease.
func (s *ContractService) attachParties(tx *gorm.DB, contractID uint, inputs []models.PartyInput, partyRole, accountRole string) error {
	for _, input := range inputs {
		party, err := s.parties.ResolveOrCreateParty(tx, input, "individual")
		if err != nil {
			return err
		}
		link := &models.ContractParty{ContractID: contractID, PartyID: party.ID, Role: partyRole}
		if err := tx.Create(link).Error; err != nil {
			return fmt.Errorf("failed to link party %d: %w", party.ID, err)
		}
		if err := s.parties.ProvisionUserAccount(tx, party, accountRole); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContractService) resolveOrCreateBroker(tx *gorm.DB, input *models.BrokerInput, contractID uint) (*models.BrokerageEntity, error) {
	crNo := strings.TrimSpace(input.CrNo)
	var broker models.BrokerageEntity
	err := tx.Where("cr_no = ?", crNo).Order("id").First(&broker).Error
	if err == nil {
		return &broker, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("broker lookup failed: %w", err)
	}

	broker = models.BrokerageEntity{
		Name:       input.Name,
		CrNo:       crNo,
		Address:    input.Address,
		Landline:   input.Landline,
		ContractID: &contractID,
	}
	if err := tx.Create(&broker).Error; err != nil {
		return nil, fmt.Errorf("failed to create broker: %w", err)
	}
	return &broker, nil
}

func (s *ContractService) insertPaymentSchedule(tx *gorm.DB, contractID uint, inputs []models.PaymentInput) error {
	for _, input := range inputs {
		dueDate, err := models.ParseDate(input.DueDate)
		if err != nil {
			return errors.ValidationError("DATE_INVALID", "payment due_date must be YYYY-MM-DD")
		}
		status := input.Status
		if status == "" {
			status = models.PaymentStatusUnpaid
		}
		payment := &models.Payment{
			ContractID: contractID,
			DueDate:    dueDate,
			Amount:     input.Amount,
			Status:     status,
			Notes:      input.Notes,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
	}
	return nil
}

// GetContract loads the full contract bundle, visible only inside the
// principal's contract scope.
func (s *ContractService) GetContract(ctx context.Context, principal *models.Principal, contractID uint) (*models.ContractDetails, error) {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryContracts)
	if err != nil {
		return nil, err
	}

	var contract models.Contract
	q := scope.Apply(s.db.WithContext(ctx).Model(&models.Contract{})).Where("contracts.id = ?", contractID)
	if err := q.First(&contract).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFoundError("contract")
		}
		return nil, errors.HandleDatabaseError(err, "load contract")
	}

	details := &models.ContractDetails{Contract: contract}
	db := s.db.WithContext(ctx)

	if contract.PropertyID != nil {
		var property models.Property
		if err := db.First(&property, *contract.PropertyID).Error; err == nil {
			details.Property = &property
		}
	}
	if contract.OfficeID != nil {
		var office models.Office
		if err := db.First(&office, *contract.OfficeID).Error; err == nil {
			details.Office = &office
		}
	}

	details.Tenants, err = s.partiesInRole(db, contract.ID, models.TenantRoleSet)
	if err != nil {
		return nil, err
	}
	details.Lessors, err = s.partiesInRole(db, contract.ID, models.LessorRoleSet)
	if err != nil {
		return nil, err
	}

	err = db.Joins("JOIN contract_units cu ON cu.unit_id = units.id").
		Where("cu.contract_id = ?", contract.ID).
		Find(&details.Units).Error
	if err != nil {
		return nil, errors.HandleDatabaseError(err, "load contract units")
	}

	if err := db.Where("contract_id = ?", contract.ID).Order("due_date").Find(&details.Payments).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "load payments")
	}
	if err := db.Where("contract_id = ?", contract.ID).Order("date").Find(&details.Receipts).Error; err != nil {
		return nil, errors.HandleDatabaseError(err, "load receipts")
	}

	return details, nil
}

func (s *ContractService) partiesInRole(db *gorm.DB, contractID uint, roleSet []string) ([]models.Party, error) {
	var parties []models.Party
	err := db.Joins("JOIN contract_parties cp ON cp.party_id = parties.id").
		Where("cp.contract_id = ? AND LOWER(TRIM(cp.role)) IN (?)", contractID, roleSet).
		Find(&parties).Error
	if err != nil {
		return nil, errors.HandleDatabaseError(err, "load contract parties")
	}
	return parties, nil
}

// UpdateContract updates the core lease fields. Changing the tenancy window
// re-checks every linked unit against the other contracts of the same office
// scope inside the same transaction that writes the update.
func (s *ContractService) UpdateContract(ctx context.Context, principal *models.Principal, contractID uint, req *models.UpdateContractRequest) error {
	scope, err := s.scopes.ResolveScope(principal, models.CategoryContracts)
	if err != nil {
		return err
	}

	startDate, err := models.ParseDate(req.StartDate)
	if err != nil {
		return errors.ValidationError("DATE_INVALID", "start_date must be YYYY-MM-DD")
	}
	endDate, err := models.ParseDate(req.EndDate)
	if err != nil {
		return errors.ValidationError("DATE_INVALID", "end_date must be YYYY-MM-DD")
	}
	if startDate != nil && endDate != nil && !startDate.Before(*endDate) {
		return errors.ValidationError("DATE_RANGE_INVALID", "start_date must be before end_date")
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		q := scope.Apply(tx.Model(&models.Contract{})).Where("contracts.id = ?", contractID)
		if err := q.First(&contract).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NotFoundError("contract")
			}
			return fmt.Errorf("load contract failed: %w", err)
		}

		updates := map[string]interface{}{}
		contractNo := strings.TrimSpace(req.ContractNo)
		if contractNo != "" {
			if err := s.checkDuplicateContractNo(tx, contractNo, contract.OfficeID, contract.ID); err != nil {
				return err
			}
			updates["contract_no"] = contractNo
		}
		if startDate != nil {
			updates["tenancy_start"] = startDate
		}
		if endDate != nil {
			updates["tenancy_end"] = endDate
		}
		if req.AnnualRent > 0 {
			updates["annual_rent"] = req.AnnualRent
		}
		if req.TotalContractValue > 0 {
			updates["total_contract_value"] = req.TotalContractValue
		}
		if len(updates) == 0 {
			return errors.ValidationError("NOTHING_TO_UPDATE", "no updatable field supplied")
		}

		if err := tx.Model(&models.Contract{}).Where("id = ?", contract.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update contract failed: %w", err)
		}

		if startDate != nil || endDate != nil {
			// a partial date update still moves the whole window: the missing
			// bound comes from the stored contract
			effStart, effEnd := contract.TenancyStart, contract.TenancyEnd
			if startDate != nil {
				effStart = startDate
			}
			if endDate != nil {
				effEnd = endDate
			}
			if err := s.revalidateUnitWindows(tx, &contract, effStart, effEnd); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if apiErr := errors.GetAPIError(txErr); apiErr != nil {
			return apiErr
		}
		return errors.HandleDatabaseError(txErr, "update contract")
	}

	s.emitAuditEvent(ctx, principal, audit.ActionUpdate, "contracts", contractID, nil, req, "contract updated")
	return nil
}

// revalidateUnitWindows re-runs the overlap check for every unit of the
// contract after its tenancy window moved, then rewrites the lease rows to the
// effective window. Callers pass the merged window, not just the changed
// bounds; a nil bound means the window is open on that side.
func (s *ContractService) revalidateUnitWindows(tx *gorm.DB, contract *models.Contract, startDate, endDate *time.Time) error {
	var links []models.ContractUnit
	if err := tx.Where("contract_id = ?", contract.ID).Find(&links).Error; err != nil {
		return fmt.Errorf("load contract units failed: %w", err)
	}

	for _, link := range links {
		var unit models.Unit
		if err := tx.First(&unit, link.UnitID).Error; err != nil {
			return fmt.Errorf("load unit %d failed: %w", link.UnitID, err)
		}

		var overlapping int64
		err := tx.Raw(`SELECT COUNT(*) FROM contract_units cu
			JOIN contracts c ON c.id = cu.contract_id
			WHERE cu.unit_id = ? AND cu.contract_id <> ?
			AND (cu.end_date IS NULL OR ? IS NULL OR cu.end_date >= ?)
			AND (cu.start_date IS NULL OR ? IS NULL OR cu.start_date <= ?)
			AND ((c.office_id IS NULL AND ? IS NULL) OR c.office_id = ?)`,
			link.UnitID, contract.ID,
			startDate, startDate,
			endDate, endDate,
			contract.OfficeID, contract.OfficeID).Scan(&overlapping).Error
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if overlapping > 0 {
			return errors.ConflictError("UNIT_WINDOW_OVERLAP",
				fmt.Sprintf("unit %s is leased by another contract in the new window", unit.UnitNo))
		}

		updates := map[string]interface{}{
			"start_date": startDate,
			"end_date":   endDate,
		}
		if err := tx.Model(&models.ContractUnit{}).Where("id = ?", link.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update lease window failed: %w", err)
		}
	}
	return nil
}

func (s *ContractService) emitAuditEvent(ctx context.Context, principal *models.Principal, action, table string, recordID uint, before, after interface{}, description string) {
	if s.auditor == nil || !s.auditor.IsEnabled() {
		return
	}
	event := &audit.Event{
		TraceID:     uuid.NewString(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Actor:       principal.ID,
		ActorRole:   principal.ActiveRole,
		Action:      action,
		Table:       table,
		RecordID:    recordID,
		Description: description,
	}
	if before != nil {
		if data, err := json.Marshal(before); err == nil {
			event.Before = data
		}
	}
	if after != nil {
		if data, err := json.Marshal(after); err == nil {
			event.After = data
		}
	}
	s.auditor.LogEvent(ctx, event)
}
