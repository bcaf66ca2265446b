/*
Package sqlite provides a SQLite-backed implementation of the payroll
collaborator interfaces.

PURPOSE:
  Implements EmployeeDirectory, PaymentEventStore and LedgerStore using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

IDEMPOTENCY ENFORCEMENT:
  The engine's query-then-write check is not atomic under concurrent
  duplicate invocations. The store closes that race with a partial
  unique index on
  (employee_id, year, month, cadence, COALESCE(fortnight, 0))
  for non-daily events. A violating insert returns
  payroll.ErrDuplicateDisbursement, which the engine maps to the
  already-paid outcome.

KEY TABLES:
  employees:       Directory records (the product owns full CRUD; this
                   store carries what the engine and server need)
  payment_events:  Immutable disbursement events
  ledger_entries:  Expense records paired with events

ORPHAN REPAIR:
  OrphanedEntries lists staff-payment ledger entries no payment event
  back-references - the residue of a failed second write. The engine
  never deletes them; repair is an operator action.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/agenciabaepi/meugestor-payroll/payroll"
)

// Store implements all payroll storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface checks
var (
	_ payroll.EmployeeDirectory = (*Store)(nil)
	_ payroll.PaymentEventStore = (*Store)(nil)
	_ payroll.LedgerStore       = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees (directory records)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		cadence TEXT NOT NULL DEFAULT '',
		rate TEXT,
		base_salary TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_company_active
		ON employees(company_id, active);

	-- Payment events (immutable disbursement history)
	CREATE TABLE IF NOT EXISTS payment_events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid_at TEXT NOT NULL,
		cadence TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		fortnight INTEGER,
		days INTEGER NOT NULL DEFAULT 0,
		ledger_entry_id TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_company_competency
		ON payment_events(company_id, year, month);
	CREATE INDEX IF NOT EXISTS idx_events_employee_competency
		ON payment_events(employee_id, year, month);
	CREATE INDEX IF NOT EXISTS idx_events_ledger_entry
		ON payment_events(ledger_entry_id);

	-- CRITICAL: one disbursement per (employee, competency, cadence,
	-- fortnight) for monthly and biweekly cadences. This closes the
	-- query-then-write race between concurrent duplicate invocations.
	-- Daily events are exempt: each one is an independent record.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_disbursement
		ON payment_events(employee_id, year, month, cadence, COALESCE(fortnight, 0))
		WHERE cadence != 'daily';

	-- Ledger entries (expense records paired with events)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		date TEXT NOT NULL,
		paid BOOLEAN NOT NULL,
		tags_json TEXT,
		metadata_json TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_company_date
		ON ledger_entries(company_id, date);
	CREATE INDEX IF NOT EXISTS idx_entries_employee
		ON ledger_entries(employee_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE DIRECTORY (payroll.EmployeeDirectory interface)
// =============================================================================

// SaveEmployee inserts or replaces an employee record.
func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) (payroll.Employee, error) {
	if e.ID == "" {
		e.ID = payroll.EmployeeID(uuid.NewString())
	}

	query := `
		INSERT OR REPLACE INTO employees
		(id, company_id, name, active, cadence, rate, base_salary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.CompanyID,
		e.Name,
		e.Active,
		string(e.Cadence),
		nullDecimal(e.Rate),
		nullDecimal(e.BaseSalary),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("failed to save employee: %w", err)
	}
	return e, nil
}

func (s *Store) ActiveEmployees(ctx context.Context, companyID payroll.CompanyID) ([]payroll.Employee, error) {
	query := `
		SELECT id, company_id, name, active, cadence, rate, base_salary
		FROM employees
		WHERE company_id = ? AND active = TRUE
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Employee(ctx context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	query := `
		SELECT id, company_id, name, active, cadence, rate, base_salary
		FROM employees
		WHERE id = ?
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("failed to query employee: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return payroll.Employee{}, err
		}
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	return scanEmployee(rows)
}

func scanEmployee(rows *sql.Rows) (payroll.Employee, error) {
	var (
		e          payroll.Employee
		cadence    string
		rate       sql.NullString
		baseSalary sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.CompanyID, &e.Name, &e.Active, &cadence, &rate, &baseSalary); err != nil {
		return payroll.Employee{}, fmt.Errorf("failed to scan employee: %w", err)
	}
	e.Cadence = payroll.Cadence(cadence)
	var err error
	if e.Rate, err = parseDecimal(rate); err != nil {
		return payroll.Employee{}, err
	}
	if e.BaseSalary, err = parseDecimal(baseSalary); err != nil {
		return payroll.Employee{}, err
	}
	return e, nil
}

// =============================================================================
// PAYMENT EVENT STORE (payroll.PaymentEventStore interface)
// =============================================================================

func (s *Store) EventsForCompetency(ctx context.Context, companyID payroll.CompanyID, year, month int, employeeID *payroll.EmployeeID) ([]payroll.PaymentEvent, error) {
	query := `
		SELECT id, employee_id, company_id, amount, paid_at, cadence,
		       year, month, fortnight, days, ledger_entry_id, status, created_at
		FROM payment_events
		WHERE company_id = ? AND year = ? AND month = ?
	`
	args := []any{companyID, year, month}
	if employeeID != nil {
		query += " AND employee_id = ?"
		args = append(args, *employeeID)
	}
	query += " ORDER BY paid_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment events: %w", err)
	}
	defer rows.Close()

	var out []payroll.PaymentEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) CreateEvent(ctx context.Context, ev payroll.PaymentEvent) (payroll.PaymentEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO payment_events
		(id, employee_id, company_id, amount, paid_at, cadence, year, month,
		 fortnight, days, ledger_entry_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		ev.ID,
		ev.EmployeeID,
		ev.CompanyID,
		ev.Amount.String(),
		ev.PaidAt.UTC().Format(time.RFC3339),
		string(ev.Cadence),
		ev.Competency.Year,
		int(ev.Competency.Month),
		nullFortnight(ev.Competency.Fortnight),
		ev.Days,
		ev.LedgerEntryID,
		ev.Status,
		ev.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return payroll.PaymentEvent{}, payroll.ErrDuplicateDisbursement
		}
		return payroll.PaymentEvent{}, fmt.Errorf("failed to insert payment event: %w", err)
	}
	return ev, nil
}

func scanEvent(rows *sql.Rows) (payroll.PaymentEvent, error) {
	var (
		ev        payroll.PaymentEvent
		amount    string
		paidAt    string
		cadence   string
		year      int
		month     int
		fortnight sql.NullInt64
		createdAt string
	)
	err := rows.Scan(
		&ev.ID, &ev.EmployeeID, &ev.CompanyID, &amount, &paidAt, &cadence,
		&year, &month, &fortnight, &ev.Days, &ev.LedgerEntryID, &ev.Status, &createdAt,
	)
	if err != nil {
		return payroll.PaymentEvent{}, fmt.Errorf("failed to scan payment event: %w", err)
	}

	if ev.Amount, err = decimal.NewFromString(amount); err != nil {
		return payroll.PaymentEvent{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if ev.PaidAt, err = time.Parse(time.RFC3339, paidAt); err != nil {
		return payroll.PaymentEvent{}, fmt.Errorf("invalid paid_at %q: %w", paidAt, err)
	}
	if ev.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return payroll.PaymentEvent{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	ev.Cadence = payroll.Cadence(cadence)
	ev.Competency = payroll.NewCompetency(year, time.Month(month))
	if fortnight.Valid {
		ev.Competency = ev.Competency.WithFortnight(payroll.Fortnight(fortnight.Int64))
	}
	return ev, nil
}

// =============================================================================
// LEDGER STORE (payroll.LedgerStore interface)
// =============================================================================

func (s *Store) CreateEntry(ctx context.Context, entry payroll.LedgerEntry) (payroll.LedgerEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	tagsJSON, _ := json.Marshal(entry.Tags)
	metadataJSON, _ := json.Marshal(entry.Metadata)

	query := `
		INSERT INTO ledger_entries
		(id, company_id, employee_id, amount, description, category, date,
		 paid, tags_json, metadata_json, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.CompanyID,
		entry.EmployeeID,
		entry.Amount.String(),
		entry.Description,
		entry.Category,
		entry.Date.UTC().Format(time.RFC3339),
		entry.Paid,
		string(tagsJSON),
		string(metadataJSON),
		entry.CreatedBy,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return payroll.LedgerEntry{}, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return entry, nil
}

// =============================================================================
// ORPHAN REPAIR - Entries whose paired event never landed
// =============================================================================

// OrphanedEntries returns staff-payment ledger entries of a company that
// no payment event back-references. These are the residue of a failed
// second write; a reconciliation pass inspects and repairs them.
func (s *Store) OrphanedEntries(ctx context.Context, companyID payroll.CompanyID) ([]payroll.LedgerEntry, error) {
	query := `
		SELECT e.id, e.company_id, e.employee_id, e.amount, e.description,
		       e.category, e.date, e.paid, e.tags_json, e.metadata_json,
		       e.created_by, e.created_at
		FROM ledger_entries e
		LEFT JOIN payment_events ev ON ev.ledger_entry_id = e.id
		WHERE e.company_id = ? AND e.category = ? AND ev.id IS NULL
		ORDER BY e.date
	`

	rows, err := s.db.QueryContext(ctx, query, companyID, payroll.LedgerCategoryStaff)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphaned entries: %w", err)
	}
	defer rows.Close()

	var out []payroll.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanEntry(rows *sql.Rows) (payroll.LedgerEntry, error) {
	var (
		entry        payroll.LedgerEntry
		amount       string
		date         string
		tagsJSON     sql.NullString
		metadataJSON sql.NullString
		createdBy    sql.NullString
		createdAt    string
	)
	err := rows.Scan(
		&entry.ID, &entry.CompanyID, &entry.EmployeeID, &amount, &entry.Description,
		&entry.Category, &date, &entry.Paid, &tagsJSON, &metadataJSON, &createdBy, &createdAt,
	)
	if err != nil {
		return payroll.LedgerEntry{}, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	if entry.Amount, err = decimal.NewFromString(amount); err != nil {
		return payroll.LedgerEntry{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if entry.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return payroll.LedgerEntry{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return payroll.LedgerEntry{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		_ = json.Unmarshal([]byte(tagsJSON.String), &entry.Tags)
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		_ = json.Unmarshal([]byte(metadataJSON.String), &entry.Metadata)
	}
	entry.CreatedBy = createdBy.String
	return entry, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", s.String, err)
	}
	return &d, nil
}

func nullFortnight(f *payroll.Fortnight) sql.NullInt64 {
	if f == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*f), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
