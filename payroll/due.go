/*
due.go - Which fortnights of a competency are payable

PURPOSE:
  For biweekly-paid employees, decides which half-month sub-periods of a
  target competency are considered due (payable) at a given date.

THE RULE:
  - Target month strictly in the future: nothing is due. A month that
    has not started cannot be owed.
  - Target month strictly in the past: both fortnights are due, no
    matter what today's day-of-month is. The month fully elapsed.
  - Target month is the current month: fortnight 1 is due; fortnight 2
    becomes due only after the 15th.

  This asymmetry is what lets the pending report distinguish "not yet
  earned" from "earned but unpaid".

SELECTION:
  NextPayableFortnight picks the smallest due fortnight without a
  recorded payment. "Both already paid" and "nothing due yet" are
  distinct results, not one collapsed message.

SEE ALSO:
  - engine.go: Uses the due set for biweekly registration
  - pending.go: Uses the due set to list outstanding fortnights
*/
package payroll

import "time"

// =============================================================================
// DUE-PERIOD CALCULATOR
// =============================================================================

// DueFortnights returns the fortnights of (year, month) that are due at
// today's date, in ascending order. Subset of {1, 2}.
func DueFortnights(year int, month time.Month, today CalendarDate) []Fortnight {
	switch {
	case today.BeforeMonth(year, month):
		return nil
	case today.AfterMonth(year, month):
		return []Fortnight{FortnightFirst, FortnightSecond}
	case today.Day <= 15:
		return []Fortnight{FortnightFirst}
	default:
		return []Fortnight{FortnightFirst, FortnightSecond}
	}
}

// =============================================================================
// NEXT PAYABLE FORTNIGHT - Greedy selection over due \ paid
// =============================================================================

// PayableStatus qualifies the result of NextPayableFortnight.
type PayableStatus int

const (
	// PayableFound: a due fortnight without a recorded payment exists.
	PayableFound PayableStatus = iota

	// PayableAllPaid: everything due has already been paid.
	PayableAllPaid

	// PayableNoneDue: nothing is due yet for this competency.
	PayableNoneDue
)

// NextPayableFortnight returns the smallest fortnight in due that does
// not appear in paid. Pure function; the returned Fortnight is only
// meaningful when the status is PayableFound.
func NextPayableFortnight(due, paid []Fortnight) (Fortnight, PayableStatus) {
	if len(due) == 0 {
		return 0, PayableNoneDue
	}
	for _, f := range due {
		if !containsFortnight(paid, f) {
			return f, PayableFound
		}
	}
	return 0, PayableAllPaid
}

func containsFortnight(set []Fortnight, f Fortnight) bool {
	for _, p := range set {
		if p == f {
			return true
		}
	}
	return false
}
