package models

import "time"

// Party is a natural or legal person named on a contract (lessor or tenant).
// Identity fields are treated as immutable after creation.
type Party struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Type       string `gorm:"column:type" json:"type"`
	Name       string `gorm:"column:name" json:"name"`
	Phone      string `gorm:"column:phone;index" json:"phone"`
	NationalID string `gorm:"column:national_id;index" json:"nationalId"`
	BaseModel
}

func (Party) TableName() string {
	return "parties"
}

// Contract is one lease agreement. OfficeID is nullable: contracts created by
// a principal with no resolvable office land in the shared null-office bucket,
// which is itself a uniqueness domain for contract_no.
type Contract struct {
	ID                 uint       `gorm:"primarykey" json:"id"`
	ContractNo         *string    `gorm:"column:contract_no;uniqueIndex:idx_contracts_office_no" json:"contractNo"`
	TitleDeedNo        string     `gorm:"column:title_deed_no" json:"titleDeedNo"`
	OfficeID           *uint      `gorm:"column:office_id;uniqueIndex:idx_contracts_office_no;index" json:"officeId"`
	PropertyID         *uint      `gorm:"column:property_id;index" json:"propertyId"`
	BrokerID           *uint      `gorm:"column:broker_id" json:"brokerId"`
	TenancyStart       *time.Time `gorm:"column:tenancy_start" json:"tenancyStart"`
	TenancyEnd         *time.Time `gorm:"column:tenancy_end" json:"tenancyEnd"`
	AnnualRent         float64    `gorm:"column:annual_rent" json:"annualRent"`
	TotalContractValue float64    `gorm:"column:total_contract_value" json:"totalContractValue"`
	CreatedBy          uint       `gorm:"column:created_by" json:"createdBy"`
	BaseModel
}

func (Contract) TableName() string {
	return "contracts"
}

// Status derives the contract lifecycle state from the tenancy window; it is
// never stored.
func (c *Contract) Status(now time.Time) string {
	if c.TenancyEnd == nil {
		return ContractStatusActive
	}
	today := now.Truncate(24 * time.Hour)
	if !c.TenancyEnd.Before(today) {
		return ContractStatusActive
	}
	return ContractStatusExpired
}

// ContractParty binds a party to a contract as tenant or lessor. Created with
// the contract and not mutated afterwards.
type ContractParty struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	ContractID uint   `gorm:"column:contract_id;index" json:"contractId"`
	PartyID    uint   `gorm:"column:party_id;index" json:"partyId"`
	Role       string `gorm:"column:role" json:"role"`
	BaseModel
}

func (ContractParty) TableName() string {
	return "contract_parties"
}

// Property is a building or asset, looked up by title deed within an office
type Property struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	TitleDeedNo     string `gorm:"column:title_deed_no;index" json:"titleDeedNo"`
	PropertyType    string `gorm:"column:property_type" json:"propertyType"`
	PropertyUsage   string `gorm:"column:property_usage" json:"propertyUsage"`
	NumUnits        int    `gorm:"column:num_units" json:"numUnits"`
	NationalAddress string `gorm:"column:national_address" json:"nationalAddress"`
	City            string `gorm:"column:city" json:"city"`
	OfficeID        *uint  `gorm:"column:office_id;index" json:"officeId"`
	BaseModel
}

func (Property) TableName() string {
	return "properties"
}

// Unit is a leasable sub-unit of a property
type Unit struct {
	ID              uint    `gorm:"primarykey" json:"id"`
	PropertyID      uint    `gorm:"column:property_id;index" json:"propertyId"`
	UnitNo          string  `gorm:"column:unit_no;index" json:"unitNo"`
	UnitType        string  `gorm:"column:unit_type" json:"unitType"`
	UnitArea        float64 `gorm:"column:unit_area" json:"unitArea"`
	ElectricMeterNo string  `gorm:"column:electric_meter_no" json:"electricMeterNo"`
	WaterMeterNo    string  `gorm:"column:water_meter_no" json:"waterMeterNo"`
	BaseModel
}

func (Unit) TableName() string {
	return "units"
}

// ContractUnit binds a unit to a contract for the contract's tenancy window.
// Re-leasing the same physical unit creates a new row per contract rather than
// mutating the old one, so the lease history of a unit stays queryable.
type ContractUnit struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	ContractID uint       `gorm:"column:contract_id;index" json:"contractId"`
	UnitID     uint       `gorm:"column:unit_id;index" json:"unitId"`
	StartDate  *time.Time `gorm:"column:start_date" json:"startDate"`
	EndDate    *time.Time `gorm:"column:end_date" json:"endDate"`
	BaseModel
}

func (ContractUnit) TableName() string {
	return "contract_units"
}

// Payment is one scheduled installment of a contract. PaidAmount and Status
// are mutated later by the collection workflow.
type Payment struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	ContractID uint       `gorm:"column:contract_id;index" json:"contractId"`
	DueDate    *time.Time `gorm:"column:due_date" json:"dueDate"`
	Amount     float64    `gorm:"column:amount" json:"amount"`
	PaidAmount float64    `gorm:"column:paid_amount" json:"paidAmount"`
	Status     string     `gorm:"column:status" json:"status"`
	Notes      string     `gorm:"column:notes" json:"notes"`
	BaseModel
}

func (Payment) TableName() string {
	return "payments"
}

// Receipt is a cash voucher recorded against a contract
type Receipt struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	ReceiptType   string     `gorm:"column:receipt_type" json:"receiptType"`
	ReferenceNo   string     `gorm:"column:reference_no" json:"referenceNo"`
	ContractID    uint       `gorm:"column:contract_id;index" json:"contractId"`
	PropertyID    *uint      `gorm:"column:property_id" json:"propertyId"`
	UnitID        *uint      `gorm:"column:unit_id" json:"unitId"`
	Amount        float64    `gorm:"column:amount" json:"amount"`
	Payer         string     `gorm:"column:payer" json:"payer"`
	Receiver      string     `gorm:"column:receiver" json:"receiver"`
	PaymentMethod string     `gorm:"column:payment_method" json:"paymentMethod"`
	Date          *time.Time `gorm:"column:date" json:"date"`
	Notes         string     `gorm:"column:notes" json:"notes"`
	BaseModel
}

func (Receipt) TableName() string {
	return "receipts"
}

// BrokerageEntity is the real-estate broker office named on a contract,
// deduplicated by commercial registration number.
type BrokerageEntity struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Name       string `gorm:"column:name" json:"name"`
	CrNo       string `gorm:"column:cr_no;index" json:"crNo"`
	Address    string `gorm:"column:address" json:"address"`
	Landline   string `gorm:"column:landline" json:"landline"`
	ContractID *uint  `gorm:"column:contract_id" json:"contractId"`
	BaseModel
}

func (BrokerageEntity) TableName() string {
	return "brokerage_entities"
}
