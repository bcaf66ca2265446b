/*
Package payroll implements the employee compensation accrual and
disbursement engine.

PURPOSE:
  Decides, for a given employee and accounting period (competency),
  whether a salary disbursement is due, for what amount, and whether a
  payment for that exact period has already been recorded. Also computes
  the aggregate outstanding liability (pending) and the recorded
  disbursements (paid) across all employees of a company.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: directory record consumed by the engine (read-only here)
  - Cadence: how often an employee is paid (monthly, biweekly, daily)
  - Competency: the accounting period a payment settles (see competency.go)
  - PaymentEvent: immutable record of one disbursement
  - LedgerEntry: the expense record paired with every PaymentEvent

DESIGN PRINCIPLES:
  1. Immutability: PaymentEvents and LedgerEntries are history, never edited
  2. Precision: decimal.Decimal for all money, never float64
  3. Type Safety: Strong typing for employee/company IDs
  4. Explicit time: "now" is always a parameter, never read from a global

SEE ALSO:
  - engine.go: The payment rule engine (RegisterPayment)
  - pending.go / paid.go: Read-side aggregators
  - store.go: External collaborator interfaces
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type CompanyID string

// =============================================================================
// CADENCE - How often an employee is paid
// =============================================================================

type Cadence string

const (
	CadenceMonthly  Cadence = "monthly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceDaily    Cadence = "daily"
)

// IsValid reports whether c is one of the three recognized cadences.
func (c Cadence) IsValid() bool {
	switch c {
	case CadenceMonthly, CadenceBiweekly, CadenceDaily:
		return true
	}
	return false
}

// Label returns the Portuguese display label used in ledger descriptions.
func (c Cadence) Label() string {
	switch c {
	case CadenceBiweekly:
		return "quinzenal"
	case CadenceDaily:
		return "diária"
	default:
		return "mensal"
	}
}

// =============================================================================
// EMPLOYEE - Directory record (external entity, read-only to this engine)
// =============================================================================

// Employee is the slice of the directory record this engine consumes.
// Rate is the explicit remuneration rate; BaseSalary is the legacy field
// used as a fallback when Rate is absent. At most one is effective; see
// ResolveRemuneration in remuneration.go for the resolution order.
type Employee struct {
	ID        EmployeeID
	CompanyID CompanyID
	Name      string
	Active    bool

	// Cadence is optional; anything unrecognized resolves to monthly.
	Cadence Cadence

	Rate       *decimal.Decimal
	BaseSalary *decimal.Decimal
}

// =============================================================================
// PAYMENT EVENT - Immutable record of one disbursement
// =============================================================================

// PaymentStatusPaid is the only status this engine ever writes: a
// disbursement is by definition already paid when it is recorded.
const PaymentStatusPaid = "pago"

// PaymentEvent records a single disbursement for an employee and
// competency. Created once per (employee, competency, cadence) for
// monthly, once per (employee, competency, fortnight) for biweekly.
// Daily events are never deduplicated; each stands alone.
type PaymentEvent struct {
	ID         string
	EmployeeID EmployeeID
	CompanyID  CompanyID
	Amount     decimal.Decimal
	PaidAt     time.Time
	Cadence    Cadence
	Competency Competency

	// Days is only meaningful for daily cadence (quantity of day-rates).
	Days int

	// LedgerEntryID back-references the expense record this event produced.
	LedgerEntryID string

	Status    string
	CreatedAt time.Time
}

// =============================================================================
// LEDGER ENTRY - Expense record paired with every PaymentEvent
// =============================================================================

// LedgerCategoryStaff is the fixed expense category for staff payments.
const LedgerCategoryStaff = "Funcionários"

// LedgerEntry is the expense/ledger record created alongside each
// PaymentEvent. Paid is always true for disbursements. Metadata carries
// the employee identifier/name, cadence and competency for traceability
// in the surrounding product's reporting.
type LedgerEntry struct {
	ID          string
	CompanyID   CompanyID
	EmployeeID  EmployeeID
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
	Paid        bool
	Tags        []string
	Metadata    map[string]string
	CreatedBy   string
	CreatedAt   time.Time
}

// =============================================================================
// DISBURSEMENT - The pair of records a successful registration produces
// =============================================================================

type Disbursement struct {
	Entry      LedgerEntry
	Event      PaymentEvent
	Competency Competency
	Amount     decimal.Decimal
}
