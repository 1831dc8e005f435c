package models

// Office status values. The legacy data mixes English and Arabic spellings for
// suspended offices, so both are recognized.
const (
	OfficeStatusPending            = "pending"
	OfficeStatusApproved           = "approved"
	OfficeStatusSuspended          = "suspended"
	OfficeStatusSuspendedLocalized = "موقوف"
)

// Derived contract status values
const (
	ContractStatusActive  = "active"
	ContractStatusExpired = "expired"
)

// Payment status values as stored by the legacy collection workflow
const (
	PaymentStatusUnpaid  = "غير مدفوعة"
	PaymentStatusPaid    = "مدفوعة"
	PaymentStatusPartial = "جزئية"
)

// Receipt types
const (
	ReceiptTypeCollection   = "قبض"
	ReceiptTypeDisbursement = "صرف"
)

// ContractParty role values written at contract creation
const (
	PartyRoleTenant = "tenant"
	PartyRoleLessor = "lessor"
)

// Seeded role names granted to provisioned party accounts
const (
	RoleNameAdmin  = "admin"
	RoleNameOffice = "office"
	RoleNameOwner  = "owner"
	RoleNameTenant = "tenant"
)

// Role-set spellings matched against stored contract_parties.role values.
// Historical rows carry localized variants, so scope predicates match the
// whole set, lowercased and trimmed.
var (
	LessorRoleSet = []string{"lessor", "مالك"}
	TenantRoleSet = []string{"tenant", "مستأجر", "مستاجر"}
)
