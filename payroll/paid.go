package payroll

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAID AGGREGATOR - Recorded payments, grouped by employee
// =============================================================================

// PaidEmployee groups the recorded events of one employee in a
// competency with their total.
type PaidEmployee struct {
	EmployeeID EmployeeID
	Name       string
	Events     []PaymentEvent
	Total      decimal.Decimal
}

// PaidReport is the read-side projection of everything disbursed for a
// company and competency. No business rule beyond grouping and summing.
type PaidReport struct {
	CompanyID  CompanyID
	Competency Competency
	Employees  []PaidEmployee
	Total      decimal.Decimal
}

// ComputePaid retrieves all payment events for the competency and groups
// them by employee. Names come from the active listing, with a direct
// directory lookup for employees deactivated after being paid; only a
// fully deleted record falls back to the raw ID as the display name.
func (e *Engine) ComputePaid(ctx context.Context, companyID CompanyID, year int, month time.Month) (PaidReport, error) {
	report := PaidReport{
		CompanyID:  companyID,
		Competency: NewCompetency(year, month),
		Total:      decimal.Zero,
	}

	events, err := e.Events.EventsForCompetency(ctx, companyID, year, int(month), nil)
	if err != nil {
		return PaidReport{}, err
	}
	if len(events) == 0 {
		return report, nil
	}

	employees, err := e.Employees.ActiveEmployees(ctx, companyID)
	if err != nil {
		return PaidReport{}, err
	}
	names := make(map[EmployeeID]string, len(employees))
	for _, emp := range employees {
		names[emp.ID] = emp.Name
	}

	grouped := groupEventsByEmployee(events)
	for id, evs := range grouped {
		pe := PaidEmployee{EmployeeID: id, Name: string(id), Events: evs, Total: decimal.Zero}
		if name, ok := names[id]; ok {
			pe.Name = name
		} else if emp, err := e.Employees.Employee(ctx, id); err == nil {
			// Deactivated after being paid; the directory record still
			// carries the display name.
			pe.Name = emp.Name
		}
		for _, ev := range evs {
			pe.Total = pe.Total.Add(ev.Amount)
		}
		report.Employees = append(report.Employees, pe)
		report.Total = report.Total.Add(pe.Total)
	}

	// Stable output for display and tests
	sort.Slice(report.Employees, func(i, j int) bool {
		return report.Employees[i].EmployeeID < report.Employees[j].EmployeeID
	})

	return report, nil
}
