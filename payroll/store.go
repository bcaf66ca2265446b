/*
store.go - External collaborator interfaces

PURPOSE:
  Defines the boundary between the engine and the stores it consumes:
  the employee directory, the payment-event store, and the ledger store.
  The engine owns none of their persistence; it only reads employees,
  queries and appends payment events, and appends ledger entries.

IDEMPOTENCY CONTRACT:
  The engine's read-before-write check is best effort: two concurrent
  calls for the same employee and competency can both observe "no
  existing event". Implementations of PaymentEventStore MUST close that
  race with a uniqueness guarantee on
  (employee, competency year/month, cadence, fortnight) for non-daily
  cadences, returning ErrDuplicateDisbursement on violation. Daily
  events are exempt: each one is an independent record.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite with a partial unique index
  - payroll/store (memory.go): in-memory, for tests and dev

SEE ALSO:
  - engine.go: Query-then-write usage
  - writer.go: The two-write disbursement sequence
*/
package payroll

import "context"

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// EmployeeDirectory reads employee records. The directory's storage and
// CRUD belong to the surrounding product.
type EmployeeDirectory interface {
	// ActiveEmployees returns all active employees of a company.
	ActiveEmployees(ctx context.Context, companyID CompanyID) ([]Employee, error)

	// Employee returns one employee by ID, or ErrEmployeeNotFound.
	Employee(ctx context.Context, id EmployeeID) (Employee, error)
}

// =============================================================================
// PAYMENT EVENT STORE
// =============================================================================

// PaymentEventStore persists and queries disbursement events.
// Append-only: events are immutable history. Correcting a mistaken
// payment is a CRUD operation on the external store, outside this
// engine.
type PaymentEventStore interface {
	// EventsForCompetency returns all events of a company for a
	// (year, month) competency, optionally filtered to one employee.
	EventsForCompetency(ctx context.Context, companyID CompanyID, year int, month int, employeeID *EmployeeID) ([]PaymentEvent, error)

	// CreateEvent persists a new event and returns it with its ID set.
	// Returns ErrDuplicateDisbursement when the uniqueness constraint
	// rejects a non-daily duplicate.
	CreateEvent(ctx context.Context, ev PaymentEvent) (PaymentEvent, error)
}

// =============================================================================
// LEDGER STORE
// =============================================================================

// LedgerStore persists expense entries. Append-only from this engine's
// point of view.
type LedgerStore interface {
	// CreateEntry persists a new ledger entry and returns it with its ID set.
	CreateEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error)
}
