/*
competency.go - The accounting period a payment settles

PURPOSE:
  A Competency identifies WHAT period a disbursement pays for: a year, a
  month, and optionally which half of the month (fortnight) for biweekly
  cadences. It is the key the idempotency rules are scoped to.

KEY CONCEPTS:
  - Fortnight: 1 (days 1-15) or 2 (days 16-end). Only biweekly events
    carry one; nil means "whole month".
  - Equality: two competencies are equal iff year, month and fortnight
    all match. This is what "a payment for that exact period already
    exists" means.

LIFECYCLE:
  Competencies are computed fresh on every call and discarded. They are
  never persisted as entities, only embedded in PaymentEvents.

SEE ALSO:
  - due.go: Which fortnights of a competency are due at a given date
  - engine.go: Uses competency equality for the already-paid check
*/
package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// FORTNIGHT - Half-month indicator
// =============================================================================

type Fortnight int

const (
	FortnightFirst  Fortnight = 1
	FortnightSecond Fortnight = 2
)

func (f Fortnight) IsValid() bool { return f == FortnightFirst || f == FortnightSecond }

// Label returns the Portuguese ordinal label, e.g. "1ª quinzena".
func (f Fortnight) Label() string {
	return fmt.Sprintf("%dª quinzena", int(f))
}

// =============================================================================
// COMPETENCY - Immutable period value
// =============================================================================

// Competency is the accounting period of a payment. Fortnight is nil for
// whole-month periods (monthly and daily cadences).
type Competency struct {
	Year      int
	Month     time.Month
	Fortnight *Fortnight
}

// NewCompetency builds a whole-month competency.
func NewCompetency(year int, month time.Month) Competency {
	return Competency{Year: year, Month: month}
}

// WithFortnight returns a copy of c scoped to the given fortnight.
func (c Competency) WithFortnight(f Fortnight) Competency {
	return Competency{Year: c.Year, Month: c.Month, Fortnight: &f}
}

// CurrentCompetency is the whole-month competency for today.
func CurrentCompetency(today CalendarDate) Competency {
	return NewCompetency(today.Year, today.Month)
}

// Equal reports whether two competencies identify the same period.
// Fortnights compare by value, not pointer identity.
func (c Competency) Equal(other Competency) bool {
	if c.Year != other.Year || c.Month != other.Month {
		return false
	}
	if (c.Fortnight == nil) != (other.Fortnight == nil) {
		return false
	}
	return c.Fortnight == nil || *c.Fortnight == *other.Fortnight
}

// SameMonth reports whether two competencies share year and month,
// regardless of fortnight.
func (c Competency) SameMonth(other Competency) bool {
	return c.Year == other.Year && c.Month == other.Month
}

// Label renders the period as "MM/YYYY".
func (c Competency) Label() string {
	return fmt.Sprintf("%02d/%04d", int(c.Month), c.Year)
}

// FullLabel renders the period including the fortnight when present,
// e.g. "2ª quinzena de 03/2025".
func (c Competency) FullLabel() string {
	if c.Fortnight != nil {
		return fmt.Sprintf("%s de %s", c.Fortnight.Label(), c.Label())
	}
	return c.Label()
}
