/*
engine.go - The payment rule engine

PURPOSE:
  The single authority for "should a payment be recorded right now, and
  for how much". Given an employee, a target competency and the payment
  events already recorded for it, decides whether to create a new
  disbursement and returns a structured Outcome.

DECISION, BY CADENCE:
  monthly:  at most one disbursement per (employee, competency). An
            existing monthly event short-circuits to already-paid.
  biweekly: at most one disbursement per (employee, competency,
            fortnight). The due set (due.go) plus the recorded events
            select the next payable fortnight. An explicit fortnight
            override targets exactly that fortnight, even outside the
            due set - that is how advance payment is expressed. Without
            an override, nothing is ever paid ahead of the due set.
  daily:    never deduplicated. Each registration is an independent
            event of rate x days.

OUTCOMES:
  created, already_paid and not_yet_due are OK=true: the desired end
  state holds (or nothing is owed). missing_rate, write_failed and
  store_error are OK=false. A duplicate rejection from the event store's
  uniqueness constraint is reported as already_paid, because a
  concurrent twin registering the same period is not a failure.

THE CLOCK:
  "now" arrives in RegisterOptions and is resolved to a business-
  timezone calendar date. The engine never reads the system clock.

SEE ALSO:
  - due.go: Due set and next-payable selection
  - remuneration.go: Cadence and rate resolution
  - writer.go: The two-write persistence sequence
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine wires the rule logic to its external collaborators.
type Engine struct {
	Employees EmployeeDirectory
	Events    PaymentEventStore
	Ledger    LedgerStore

	// Location is the business timezone all period math is defined in.
	Location *time.Location

	writer *DisbursementWriter
}

// NewEngine creates an engine over the three collaborator stores.
func NewEngine(employees EmployeeDirectory, events PaymentEventStore, ledger LedgerStore, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		Employees: employees,
		Events:    events,
		Ledger:    ledger,
		Location:  loc,
		writer:    &DisbursementWriter{Events: events, Ledger: ledger},
	}
}

// =============================================================================
// OPTIONS AND OUTCOME
// =============================================================================

// RegisterOptions carries the optional overrides of a registration.
// Now is required: the engine never reads a global clock.
type RegisterOptions struct {
	Now time.Time

	// Competency targets a specific month; defaults to the current month
	// in the business timezone. Any fortnight on it is ignored - the
	// fortnight is selected by the rule (or by the Fortnight override).
	Competency *Competency

	// Fortnight forces a specific half-month (biweekly only). Allows
	// advance payment of a fortnight that is not due yet.
	Fortnight *Fortnight

	// Days is the quantity of day-rates (daily only); defaults to 1.
	Days *int

	// Rate overrides the resolved pay rate when positive.
	Rate *decimal.Decimal

	// PaymentDate defaults to Now.
	PaymentDate *time.Time

	// ActorID is recorded on the ledger entry. Authorization is an
	// external concern; this is traceability only.
	ActorID string
}

type OutcomeCode string

const (
	OutcomeCreated     OutcomeCode = "created"
	OutcomeAlreadyPaid OutcomeCode = "already_paid"
	OutcomeNotYetDue   OutcomeCode = "not_yet_due"
	OutcomeMissingRate OutcomeCode = "missing_rate"
	OutcomeWriteFailed OutcomeCode = "write_failed"
	OutcomeStoreError  OutcomeCode = "store_error"
)

// Outcome is the structured result of a registration attempt.
// OK=true covers created, already_paid and not_yet_due: all are
// idempotent-safe, non-error answers. Result is set only for created.
type Outcome struct {
	OK          bool
	AlreadyPaid bool
	Code        OutcomeCode
	Message     string
	Result      *Disbursement

	// Err carries the underlying cause for write_failed / store_error.
	Err error
}

// =============================================================================
// REGISTER PAYMENT
// =============================================================================

// RegisterPaymentByID resolves the employee from the directory first.
func (e *Engine) RegisterPaymentByID(ctx context.Context, id EmployeeID, opts RegisterOptions) Outcome {
	emp, err := e.Employees.Employee(ctx, id)
	if err != nil {
		return Outcome{Code: OutcomeStoreError, Message: fmt.Sprintf("funcionário %s não encontrado", id), Err: err}
	}
	return e.RegisterPayment(ctx, emp, opts)
}

// RegisterPayment applies the payment rule for one employee.
func (e *Engine) RegisterPayment(ctx context.Context, emp Employee, opts RegisterOptions) Outcome {
	today := LocalDate(opts.Now, e.Location)

	comp := CurrentCompetency(today)
	if opts.Competency != nil {
		comp = NewCompetency(opts.Competency.Year, opts.Competency.Month)
	}

	payDate := opts.Now
	if opts.PaymentDate != nil {
		payDate = *opts.PaymentDate
	}

	cadence, rate := ResolveRemuneration(emp)
	if opts.Rate != nil && opts.Rate.IsPositive() {
		v := *opts.Rate
		rate = &v
	}

	switch cadence {
	case CadenceBiweekly:
		return e.registerBiweekly(ctx, emp, comp, today, rate, payDate, opts)
	case CadenceDaily:
		return e.registerDaily(ctx, emp, comp, rate, payDate, opts)
	default:
		return e.registerMonthly(ctx, emp, comp, rate, payDate, opts)
	}
}

// -----------------------------------------------------------------------------
// Monthly: one disbursement per employee per month.
// -----------------------------------------------------------------------------

func (e *Engine) registerMonthly(ctx context.Context, emp Employee, comp Competency, rate *decimal.Decimal, payDate time.Time, opts RegisterOptions) Outcome {
	events, err := e.employeeEvents(ctx, emp, comp)
	if err != nil {
		return storeErrorOutcome(err)
	}

	for _, ev := range events {
		if ev.Cadence == CadenceMonthly {
			return Outcome{
				OK:          true,
				AlreadyPaid: true,
				Code:        OutcomeAlreadyPaid,
				Message:     fmt.Sprintf("salário de %s já foi pago para %s", comp.Label(), emp.Name),
			}
		}
	}

	if rate == nil {
		return missingRateOutcome(emp)
	}
	return e.write(ctx, emp, CadenceMonthly, comp, *rate, 0, payDate, opts.ActorID)
}

// -----------------------------------------------------------------------------
// Biweekly: one disbursement per fortnight, selected from due \ paid.
// -----------------------------------------------------------------------------

func (e *Engine) registerBiweekly(ctx context.Context, emp Employee, comp Competency, today CalendarDate, rate *decimal.Decimal, payDate time.Time, opts RegisterOptions) Outcome {
	events, err := e.employeeEvents(ctx, emp, comp)
	if err != nil {
		return storeErrorOutcome(err)
	}

	var paid []Fortnight
	for _, ev := range events {
		if ev.Cadence == CadenceBiweekly && ev.Competency.Fortnight != nil {
			paid = append(paid, *ev.Competency.Fortnight)
		}
	}

	var target Fortnight
	if opts.Fortnight != nil && opts.Fortnight.IsValid() {
		// Explicit override: advance payment is allowed, double payment
		// of the same fortnight is not.
		target = *opts.Fortnight
		if containsFortnight(paid, target) {
			return Outcome{
				OK:          true,
				AlreadyPaid: true,
				Code:        OutcomeAlreadyPaid,
				Message:     fmt.Sprintf("%s de %s já foi paga para %s", target.Label(), comp.Label(), emp.Name),
			}
		}
	} else {
		due := DueFortnights(comp.Year, comp.Month, today)
		f, status := NextPayableFortnight(due, paid)
		switch status {
		case PayableNoneDue:
			return Outcome{
				OK:      true,
				Code:    OutcomeNotYetDue,
				Message: fmt.Sprintf("nenhuma quinzena de %s está vencida ainda", comp.Label()),
			}
		case PayableAllPaid:
			return Outcome{
				OK:          true,
				AlreadyPaid: true,
				Code:        OutcomeAlreadyPaid,
				Message:     fmt.Sprintf("as quinzenas devidas de %s já foram pagas para %s", comp.Label(), emp.Name),
			}
		}
		target = f
	}

	if rate == nil {
		return missingRateOutcome(emp)
	}
	return e.write(ctx, emp, CadenceBiweekly, comp.WithFortnight(target), *rate, 0, payDate, opts.ActorID)
}

// -----------------------------------------------------------------------------
// Daily: independent events, rate x days, never deduplicated.
// -----------------------------------------------------------------------------

func (e *Engine) registerDaily(ctx context.Context, emp Employee, comp Competency, rate *decimal.Decimal, payDate time.Time, opts RegisterOptions) Outcome {
	if rate == nil {
		return missingRateOutcome(emp)
	}

	days := 1
	if opts.Days != nil && *opts.Days > 0 {
		days = *opts.Days
	}
	amount := rate.Mul(decimal.NewFromInt(int64(days))).Round(2)
	return e.write(ctx, emp, CadenceDaily, comp, amount, days, payDate, opts.ActorID)
}

// -----------------------------------------------------------------------------
// Shared plumbing
// -----------------------------------------------------------------------------

func (e *Engine) employeeEvents(ctx context.Context, emp Employee, comp Competency) ([]PaymentEvent, error) {
	id := emp.ID
	return e.Events.EventsForCompetency(ctx, emp.CompanyID, comp.Year, int(comp.Month), &id)
}

func (e *Engine) write(ctx context.Context, emp Employee, cadence Cadence, comp Competency, amount decimal.Decimal, days int, payDate time.Time, actorID string) Outcome {
	result, err := e.writer.Write(ctx, disbursementInput{
		Employee:    emp,
		Cadence:     cadence,
		Competency:  comp,
		Amount:      amount,
		Days:        days,
		PaymentDate: payDate,
		ActorID:     actorID,
	})
	if err != nil {
		if IsDuplicate(err) {
			// A concurrent call won the race; the period is paid. The
			// ledger entry this call already wrote is now an orphan and
			// stays until the OrphanedEntries reconciliation pass runs.
			return Outcome{
				OK:          true,
				AlreadyPaid: true,
				Code:        OutcomeAlreadyPaid,
				Message:     fmt.Sprintf("%s já foi paga para %s", comp.FullLabel(), emp.Name),
			}
		}
		return Outcome{
			OK:      false,
			Code:    OutcomeWriteFailed,
			Message: "falha ao registrar o pagamento, tente novamente",
			Err:     err,
		}
	}

	return Outcome{
		OK:      true,
		Code:    OutcomeCreated,
		Message: fmt.Sprintf("pagamento registrado: %s - %s (R$ %s)", comp.FullLabel(), emp.Name, amount.StringFixed(2)),
		Result:  &result,
	}
}

func missingRateOutcome(emp Employee) Outcome {
	return Outcome{
		OK:      false,
		Code:    OutcomeMissingRate,
		Message: fmt.Sprintf("funcionário %s não possui salário configurado", emp.Name),
	}
}

func storeErrorOutcome(err error) Outcome {
	return Outcome{
		OK:      false,
		Code:    OutcomeStoreError,
		Message: "falha ao consultar pagamentos existentes",
		Err:     err,
	}
}
