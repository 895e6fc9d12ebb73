package model

// SchemaID enumerates the closed set of structured classification schemas.
type SchemaID int

const (
	// SchemaPaymentTypes classifies payment purposes found in transaction text.
	SchemaPaymentTypes SchemaID = iota
	// SchemaCashActivity classifies the level of cash handling.
	SchemaCashActivity
	// SchemaForeignTrade detects signs of foreign-trade activity.
	SchemaForeignTrade
)

// String returns the tool name the schema is exposed under in LLM requests.
func (s SchemaID) String() string {
	switch s {
	case SchemaPaymentTypes:
		return "PaymentTypes"
	case SchemaCashActivity:
		return "CashOperations"
	case SchemaForeignTrade:
		return "VedSigns"
	default:
		return "Unknown"
	}
}

// Classification is a schema-constrained LLM result. A value is either
// fully well-formed per its schema or never produced; callers get an error
// instead of a partial object.
type Classification interface {
	Schema() SchemaID
}

// PaymentTypes holds three independent payment-purpose booleans.
type PaymentTypes struct {
	ToSuppliers   bool `json:"payments_to_suppliers"`
	SalaryRelated bool `json:"payments_salary_related"`
	Tax           bool `json:"payments_tax"`
}

// Schema implements Classification.
func (PaymentTypes) Schema() SchemaID { return SchemaPaymentTypes }

// CashLevel is the two-valued cash activity enumeration.
type CashLevel string

// Valid CashLevel values. The schema admits no others.
const (
	CashLevelHigh CashLevel = "high"
	CashLevelLow  CashLevel = "low"
)

// CashActivity holds the classified cash activity level.
type CashActivity struct {
	Level CashLevel `json:"cash_activity_level"`
}

// Schema implements Classification.
func (CashActivity) Schema() SchemaID { return SchemaCashActivity }

// ForeignTradeSigns reports whether foreign-trade indicators were found.
type ForeignTradeSigns struct {
	HasSigns bool `json:"has_ved_signs"`
}

// Schema implements Classification.
func (ForeignTradeSigns) Schema() SchemaID { return SchemaForeignTrade }
