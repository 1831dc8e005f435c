package models

import "gorm.io/gorm"

// ResourceCategory names a resource family whose rows are visibility-filtered
// per principal.
type ResourceCategory string

const (
	CategoryContracts  ResourceCategory = "contracts"
	CategoryPayments   ResourceCategory = "payments"
	CategoryReceipts   ResourceCategory = "receipts"
	CategoryProperties ResourceCategory = "properties"
	CategoryUnits      ResourceCategory = "units"
	CategoryOffices    ResourceCategory = "offices"
)

// ScopeDescriptor is the visibility predicate for one (principal, category)
// pair. It is a pure value: resolving a scope performs no I/O, and the
// predicate only touches the database when applied to a query.
type ScopeDescriptor struct {
	// All marks the universal scope (platform admin); Where/Args are empty.
	All bool
	// Where is a SQL predicate with table-qualified columns so it can be
	// attached to joined queries.
	Where string
	Args  []interface{}
}

// Apply attaches the predicate to a query
func (s ScopeDescriptor) Apply(q *gorm.DB) *gorm.DB {
	if s.All {
		return q
	}
	return q.Where(s.Where, s.Args...)
}
