/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine reports business conditions (already paid, missing rate) as
  structured Outcomes, not errors; the errors here cover collaborator
  failures and the storage-level uniqueness guarantee.

ERROR CATEGORIES:
  1. Store errors - Read/write failures of the external stores
  2. Uniqueness errors - Duplicate disbursement rejected by storage
  3. Partial-write errors - Ledger entry created, payment event failed

USAGE:
  Store implementations return ErrDuplicateDisbursement when the
  (employee, competency, cadence, fortnight) uniqueness constraint
  rejects an insert. The engine maps that to the already-paid outcome
  rather than a hard error: a concurrent duplicate means the desired
  end state already holds.

SEE ALSO:
  - store.go: Interfaces whose implementations return these
  - writer.go: Produces OrphanedEntryError on partial writes
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateDisbursement is returned by stores when a payment event
	// for the same (employee, competency, cadence, fortnight) already
	// exists. Expected under concurrent duplicate invocations; treated as
	// already-paid, not as a failure.
	ErrDuplicateDisbursement = errors.New("duplicate disbursement")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrWriteFailed is returned when the external store rejected or
	// failed a write. Safe to retry with identical inputs.
	ErrWriteFailed = errors.New("write failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OrphanedEntryError reports a ledger entry that was created but whose
// paired payment event failed to persist. The payment-event store is
// authoritative for idempotency, so the orphan is derivative data; the
// entry ID is carried so a reconciliation pass can find it.
type OrphanedEntryError struct {
	EntryID string
	Cause   error
}

func (e *OrphanedEntryError) Error() string {
	return fmt.Sprintf("payment event write failed, ledger entry %s orphaned: %v", e.EntryID, e.Cause)
}

func (e *OrphanedEntryError) Unwrap() error { return ErrWriteFailed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDuplicate reports whether err is a storage-level duplicate rejection.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateDisbursement)
}

// IsNotFound reports whether err indicates a missing employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
