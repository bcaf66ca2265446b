/*
writer.go - Ledger + payment-event writer

PURPOSE:
  Persists the two linked records a successful registration produces:
  the expense/ledger entry (the economically meaningful side effect) and
  the payment event (the idempotency bookkeeping), with the event
  carrying a back-reference to the entry.

WRITE ORDER AND FAILURE POLICY:
  1. Create the ledger entry. On failure: abort, nothing written.
  2. Create the payment event referencing the entry. On failure: the
     whole registration is reported as failed (OrphanedEntryError). The
     payment-event store is authoritative for idempotency; the ledger
     entry is derivative, and an orphaned one is repaired by an offline
     reconciliation pass using the entry ID carried in the error. The
     engine never deletes the orphan itself: ledger records are
     append-only history from this engine's point of view.

  A duplicate rejection from the event store propagates unchanged so the
  engine can map it to the already-paid outcome.

SEE ALSO:
  - engine.go: The only caller
  - errors.go: OrphanedEntryError, ErrDuplicateDisbursement
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DISBURSEMENT WRITER
// =============================================================================

// DisbursementWriter creates the ledger entry / payment event pair.
type DisbursementWriter struct {
	Events PaymentEventStore
	Ledger LedgerStore
}

// disbursementInput carries everything the writer needs to build both records.
type disbursementInput struct {
	Employee    Employee
	Cadence     Cadence
	Competency  Competency
	Amount      decimal.Decimal
	Days        int
	PaymentDate time.Time
	ActorID     string
}

// Write persists the entry then the event. See the failure policy above.
func (w *DisbursementWriter) Write(ctx context.Context, in disbursementInput) (Disbursement, error) {
	entry := LedgerEntry{
		ID:          uuid.NewString(),
		CompanyID:   in.Employee.CompanyID,
		EmployeeID:  in.Employee.ID,
		Amount:      in.Amount,
		Description: description(in.Employee, in.Cadence, in.Competency),
		Category:    LedgerCategoryStaff,
		Date:        in.PaymentDate,
		Paid:        true,
		Tags:        []string{"folha", "salario"},
		Metadata: map[string]string{
			"employee_id":   string(in.Employee.ID),
			"employee_name": in.Employee.Name,
			"cadence":       string(in.Cadence),
			"competency":    in.Competency.FullLabel(),
		},
		CreatedBy: in.ActorID,
		CreatedAt: in.PaymentDate,
	}

	entry, err := w.Ledger.CreateEntry(ctx, entry)
	if err != nil {
		return Disbursement{}, fmt.Errorf("%w: ledger entry: %v", ErrWriteFailed, err)
	}

	event := PaymentEvent{
		ID:            uuid.NewString(),
		EmployeeID:    in.Employee.ID,
		CompanyID:     in.Employee.CompanyID,
		Amount:        in.Amount,
		PaidAt:        in.PaymentDate,
		Cadence:       in.Cadence,
		Competency:    in.Competency,
		Days:          in.Days,
		LedgerEntryID: entry.ID,
		Status:        PaymentStatusPaid,
		CreatedAt:     in.PaymentDate,
	}

	event, err = w.Events.CreateEvent(ctx, event)
	if err != nil {
		if IsDuplicate(err) {
			// Concurrent duplicate closed by the store's uniqueness
			// constraint. The entry just written is an orphan, but the
			// caller must see this as already-paid, not as a failure.
			return Disbursement{}, err
		}
		return Disbursement{}, &OrphanedEntryError{EntryID: entry.ID, Cause: err}
	}

	return Disbursement{
		Entry:      entry,
		Event:      event,
		Competency: in.Competency,
		Amount:     in.Amount,
	}, nil
}

// description builds the human-readable ledger line, e.g.
// "Pagamento de salário (quinzenal, 2ª quinzena de 03/2025) - Maria".
func description(e Employee, cadence Cadence, comp Competency) string {
	return fmt.Sprintf("Pagamento de salário (%s, %s) - %s", cadence.Label(), comp.FullLabel(), e.Name)
}
