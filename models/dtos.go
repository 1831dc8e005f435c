package models

import "time"

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ParseDate parses an optional YYYY-MM-DD wire date. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PartyInput is one tenant or lessor in a contract-creation request
type PartyInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// PropertyInput describes the property when it does not exist yet
type PropertyInput struct {
	PropertyType    string `json:"property_type"`
	PropertyUsage   string `json:"property_usage"`
	NumUnits        int    `json:"num_units"`
	NationalAddress string `json:"national_address"`
	City            string `json:"city"`
}

// UnitInput is one unit to bind to the new contract
type UnitInput struct {
	UnitNo          string  `json:"unit_no"`
	UnitType        string  `json:"unit_type"`
	UnitArea        float64 `json:"unit_area"`
	ElectricMeterNo string  `json:"electric_meter_no"`
	WaterMeterNo    string  `json:"water_meter_no"`
}

// PaymentInput is one scheduled installment
type PaymentInput struct {
	DueDate string  `json:"due_date"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"`
	Notes   string  `json:"notes"`
}

// BrokerInput identifies the brokerage entity by commercial registration no
type BrokerInput struct {
	Name     string `json:"name"`
	CrNo     string `json:"cr_no"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Landline string `json:"landline"`
}

// CreateContractRequest is the body of POST /contracts
type CreateContractRequest struct {
	ContractNo         string         `json:"contract_no"`
	TitleDeedNo        string         `json:"title_deed_no"`
	AnnualRent         float64        `json:"annual_rent"`
	TotalContractValue float64        `json:"total_contract_value"`
	TenancyStart       string         `json:"tenancy_start"`
	TenancyEnd         string         `json:"tenancy_end"`
	Tenants            []PartyInput   `json:"tenants"`
	Lessors            []PartyInput   `json:"lessors"`
	Property           PropertyInput  `json:"property"`
	Units              []UnitInput    `json:"units"`
	Payments           []PaymentInput `json:"payments"`
	BrokerageEntity    *BrokerInput   `json:"brokerage_entity"`
}

// CreateContractResult identifies the rows created by one contract transaction
type CreateContractResult struct {
	ContractID uint  `json:"contract_id"`
	PropertyID uint  `json:"property_id"`
	OfficeID   *uint `json:"office_id"`
}

// UpdateContractRequest is the body of PUT /contracts/{id}
type UpdateContractRequest struct {
	ContractNo         string  `json:"contract_no"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	AnnualRent         float64 `json:"annual_rent"`
	TotalContractValue float64 `json:"total_contract_value"`
}

// ContractSummary is one row of GET /contracts/my
type ContractSummary struct {
	ID           uint       `json:"id"`
	ContractNo   *string    `json:"contract_no"`
	AnnualRent   float64    `json:"annual_rent"`
	TenancyStart *time.Time `json:"tenancy_start"`
	TenancyEnd   *time.Time `json:"tenancy_end"`
	PropertyID   *uint      `json:"property_id"`
	OfficeName   string     `json:"office_name"`
	TenantName   string     `json:"tenant_name"`
	TenantPhone  string     `json:"tenant_phone"`
	LessorName   string     `json:"lessor_name"`
	Status       string     `json:"contract_status" gorm:"-"`
	DaysToEnd    *int       `json:"days_to_end" gorm:"-"`
}

// ContractDetails is the full bundle returned by GET /contracts/{id}
type ContractDetails struct {
	Contract Contract  `json:"contract"`
	Property *Property `json:"property"`
	Office   *Office   `json:"office"`
	Tenants  []Party   `json:"tenants"`
	Lessors  []Party   `json:"lessors"`
	Units    []Unit    `json:"units"`
	Payments []Payment `json:"payments"`
	Receipts []Receipt `json:"receipts"`
}

// SuccessResponse is the standard success envelope
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Total   int         `json:"total,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
