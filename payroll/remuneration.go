package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// REMUNERATION RESOLVER - Cadence and rate fallback chain
// =============================================================================

// ResolveRemuneration determines an employee's effective pay cadence and
// base rate.
//
// Cadence: the explicit field when it is one of the recognized values,
// otherwise monthly.
//
// Rate resolution order:
//  1. the remuneration rate field, when present and positive
//  2. the legacy base-salary field, when present and positive
//  3. nil - rate not configured
//
// A nil rate means "unknown", never zero. Callers must surface it as a
// missing-configuration condition instead of computing a zero payment.
func ResolveRemuneration(e Employee) (Cadence, *decimal.Decimal) {
	cadence := e.Cadence
	if !cadence.IsValid() {
		cadence = CadenceMonthly
	}
	return cadence, resolveRate(e)
}

func resolveRate(e Employee) *decimal.Decimal {
	if e.Rate != nil && e.Rate.IsPositive() {
		v := *e.Rate
		return &v
	}
	if e.BaseSalary != nil && e.BaseSalary.IsPositive() {
		v := *e.BaseSalary
		return &v
	}
	return nil
}
