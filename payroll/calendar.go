package payroll

import "time"

// =============================================================================
// CALENDAR DATE - Business-timezone calendar identity
// =============================================================================

// CalendarDate is the local calendar identity of an instant in the
// business timezone. All period math in this engine is defined on
// CalendarDate, never on UTC or server-local time: "is the 15th over
// yet" must match the business's operating region regardless of where
// the process runs.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// LocalDate resolves an instant to its calendar date in loc.
// Pure function of the input; a nil location falls back to UTC.
func LocalDate(t time.Time, loc *time.Location) CalendarDate {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return CalendarDate{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// NewCalendarDate builds a CalendarDate directly. Used by tests to pin
// "today" without constructing instants.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// Comparison against a (year, month) pair, the granularity competency
// math cares about.

// BeforeMonth reports whether d falls strictly before (year, month).
func (d CalendarDate) BeforeMonth(year int, month time.Month) bool {
	return d.Year < year || (d.Year == year && d.Month < month)
}

// AfterMonth reports whether d falls strictly after (year, month).
func (d CalendarDate) AfterMonth(year int, month time.Month) bool {
	return d.Year > year || (d.Year == year && d.Month > month)
}

// InMonth reports whether d falls within (year, month).
func (d CalendarDate) InMonth(year int, month time.Month) bool {
	return d.Year == year && d.Month == month
}

func (d CalendarDate) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
