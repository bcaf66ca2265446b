// Package store provides in-memory implementations of the payroll
// collaborator interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/agenciabaepi/meugestor-payroll/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements EmployeeDirectory, PaymentEventStore and LedgerStore
// in memory. It enforces the same uniqueness guarantee the production
// store does: at most one non-daily event per
// (employee, year, month, cadence, fortnight).
type Memory struct {
	mu        sync.RWMutex
	employees map[payroll.EmployeeID]payroll.Employee
	events    []payroll.PaymentEvent
	entries   []payroll.LedgerEntry
	unique    map[disbursementKey]bool
}

type disbursementKey struct {
	EmployeeID payroll.EmployeeID
	Year       int
	Month      int
	Cadence    payroll.Cadence
	Fortnight  int // 0 = whole month
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[payroll.EmployeeID]payroll.Employee),
		unique:    make(map[disbursementKey]bool),
	}
}

// Compile-time interface checks
var (
	_ payroll.EmployeeDirectory = (*Memory)(nil)
	_ payroll.PaymentEventStore = (*Memory)(nil)
	_ payroll.LedgerStore       = (*Memory)(nil)
)

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// SaveEmployee inserts or replaces an employee record.
func (m *Memory) SaveEmployee(_ context.Context, e payroll.Employee) (payroll.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = payroll.EmployeeID(uuid.NewString())
	}
	m.employees[e.ID] = e
	return e, nil
}

func (m *Memory) ActiveEmployees(_ context.Context, companyID payroll.CompanyID) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.Employee
	for _, e := range m.employees {
		if e.CompanyID == companyID && e.Active {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Employee(_ context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	return e, nil
}

// =============================================================================
// PAYMENT EVENT STORE
// =============================================================================

func (m *Memory) EventsForCompetency(_ context.Context, companyID payroll.CompanyID, year, month int, employeeID *payroll.EmployeeID) ([]payroll.PaymentEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.PaymentEvent
	for _, ev := range m.events {
		if ev.CompanyID != companyID || ev.Competency.Year != year || int(ev.Competency.Month) != month {
			continue
		}
		if employeeID != nil && ev.EmployeeID != *employeeID {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (m *Memory) CreateEvent(_ context.Context, ev payroll.PaymentEvent) (payroll.PaymentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	// Daily events are independent records; only monthly/biweekly carry
	// the one-per-period uniqueness guarantee.
	if ev.Cadence != payroll.CadenceDaily {
		k := eventKey(ev)
		if m.unique[k] {
			return payroll.PaymentEvent{}, payroll.ErrDuplicateDisbursement
		}
		m.unique[k] = true
	}

	m.events = append(m.events, ev)
	return ev, nil
}

func eventKey(ev payroll.PaymentEvent) disbursementKey {
	k := disbursementKey{
		EmployeeID: ev.EmployeeID,
		Year:       ev.Competency.Year,
		Month:      int(ev.Competency.Month),
		Cadence:    ev.Cadence,
	}
	if ev.Competency.Fortnight != nil {
		k.Fortnight = int(*ev.Competency.Fortnight)
	}
	return k
}

// =============================================================================
// LEDGER STORE
// =============================================================================

func (m *Memory) CreateEntry(_ context.Context, entry payroll.LedgerEntry) (payroll.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

// Entries returns a copy of all ledger entries, for assertions in tests.
func (m *Memory) Entries() []payroll.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Events returns a copy of all payment events, for assertions in tests.
func (m *Memory) Events() []payroll.PaymentEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.PaymentEvent, len(m.events))
	copy(out, m.events)
	return out
}
