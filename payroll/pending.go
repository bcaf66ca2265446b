/*
pending.go - Outstanding liability aggregator

PURPOSE:
  Computes, per active employee of a company, the due-but-unpaid
  sub-periods of a competency and their amounts, plus company-wide
  totals. Read-only: shares the remuneration resolver and due-set rule
  with the engine so the dashboard and the registration path can never
  disagree about what is owed.

RULES:
  - daily-cadence employees are never pending: each daily event is an
    independent registration, there is no schedule to be behind on
  - monthly: one pending item when no monthly event exists for the month
  - biweekly: one pending item per due fortnight without an event
  - unknown rate: the item is listed with a nil amount and counted in
    UnknownRateCount; it is never coerced to zero inside Total

SEE ALSO:
  - due.go: The due-set rule
  - paid.go: The recorded-payments projection
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PENDING REPORT
// =============================================================================

// PendingItem is one outstanding sub-period for one employee.
// Amount is nil when the employee's rate is unknown.
type PendingItem struct {
	EmployeeID EmployeeID
	Name       string
	Cadence    Cadence
	Competency Competency
	Amount     *decimal.Decimal
}

// PendingReport aggregates outstanding liability for one company and
// competency. Total sums only the items with a known amount;
// UnknownRateCount counts the rest.
type PendingReport struct {
	CompanyID        CompanyID
	Competency       Competency
	Items            []PendingItem
	Total            decimal.Decimal
	UnknownRateCount int
}

// =============================================================================
// PENDING AGGREGATOR
// =============================================================================

// ComputePending scans all active employees of a company for a
// competency and lists what is due but unpaid at now.
func (e *Engine) ComputePending(ctx context.Context, companyID CompanyID, year int, month time.Month, now time.Time) (PendingReport, error) {
	today := LocalDate(now, e.Location)
	comp := NewCompetency(year, month)

	report := PendingReport{
		CompanyID:  companyID,
		Competency: comp,
		Total:      decimal.Zero,
	}

	employees, err := e.Employees.ActiveEmployees(ctx, companyID)
	if err != nil {
		return PendingReport{}, err
	}

	events, err := e.Events.EventsForCompetency(ctx, companyID, year, int(month), nil)
	if err != nil {
		return PendingReport{}, err
	}
	byEmployee := groupEventsByEmployee(events)

	for _, emp := range employees {
		cadence, rate := ResolveRemuneration(emp)
		if cadence == CadenceDaily {
			continue
		}

		switch cadence {
		case CadenceMonthly:
			if hasCadenceEvent(byEmployee[emp.ID], CadenceMonthly) {
				continue
			}
			report.add(pendingItem(emp, cadence, comp, rate))

		case CadenceBiweekly:
			due := DueFortnights(year, month, today)
			var paid []Fortnight
			for _, ev := range byEmployee[emp.ID] {
				if ev.Cadence == CadenceBiweekly && ev.Competency.Fortnight != nil {
					paid = append(paid, *ev.Competency.Fortnight)
				}
			}
			for _, f := range due {
				if containsFortnight(paid, f) {
					continue
				}
				report.add(pendingItem(emp, cadence, comp.WithFortnight(f), rate))
			}
		}
	}

	return report, nil
}

func (r *PendingReport) add(item PendingItem) {
	r.Items = append(r.Items, item)
	if item.Amount != nil {
		r.Total = r.Total.Add(*item.Amount)
	} else {
		r.UnknownRateCount++
	}
}

func pendingItem(emp Employee, cadence Cadence, comp Competency, rate *decimal.Decimal) PendingItem {
	item := PendingItem{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Cadence:    cadence,
		Competency: comp,
	}
	if rate != nil {
		v := *rate
		item.Amount = &v
	}
	return item
}

func hasCadenceEvent(events []PaymentEvent, cadence Cadence) bool {
	for _, ev := range events {
		if ev.Cadence == cadence {
			return true
		}
	}
	return false
}

func groupEventsByEmployee(events []PaymentEvent) map[EmployeeID][]PaymentEvent {
	grouped := make(map[EmployeeID][]PaymentEvent, len(events))
	for _, ev := range events {
		grouped[ev.EmployeeID] = append(grouped[ev.EmployeeID], ev)
	}
	return grouped
}
