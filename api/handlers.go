/*
handlers.go - HTTP handlers for the payroll engine

PURPOSE:
  Exposes the three engine operations plus the minimal employee
  directory endpoints needed to drive them. Handles HTTP
  request/response, JSON serialization, and delegates every decision to
  the engine.

ENDPOINTS:
  POST /api/payments                          Register a disbursement
  GET  /api/companies/{id}/pending            Outstanding liability report
  GET  /api/companies/{id}/paid               Recorded payments report
  POST /api/employees                         Create/update an employee
  GET  /api/employees?company={id}            List active employees
  GET  /api/health                            Liveness probe

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call the engine (with time.Now() resolved HERE - the engine never
     reads a clock)
  4. Serialize response

ERROR HANDLING:
  - 400: Validation errors, invalid input
  - 404: Unknown employee
  - 422: Blocked registration (missing pay rate)
  - 500: Store failures
  An already-paid or not-yet-due outcome is 200: the desired end state
  already holds.

SECURITY NOTE:
  Authentication and tenant resolution belong to the surrounding
  product's gateway; no auth middleware here.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agenciabaepi/meugestor-payroll/payroll"
)

// =============================================================================
// HANDLER
// =============================================================================

// EmployeeWriter is the slice of the directory the server needs beyond
// the engine's read-only view.
type EmployeeWriter interface {
	SaveEmployee(ctx context.Context, e payroll.Employee) (payroll.Employee, error)
}

// Handler holds the engine and the directory writer.
type Handler struct {
	Engine    *payroll.Engine
	Employees EmployeeWriter

	// Clock is time.Now in production; tests pin it.
	Clock func() time.Time
}

func NewHandler(engine *payroll.Engine, employees EmployeeWriter) *Handler {
	return &Handler{Engine: engine, Employees: employees, Clock: time.Now}
}

// =============================================================================
// PAYMENTS
// =============================================================================

// RegisterPayment handles POST /api/payments.
func (h *Handler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	var req RegisterPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	opts := payroll.RegisterOptions{
		Now:     h.Clock(),
		ActorID: req.ActorID,
	}

	if req.Year != 0 || req.Month != 0 {
		if req.Year <= 0 || req.Month < 1 || req.Month > 12 {
			writeError(w, http.StatusBadRequest, "year and month must form a valid competency")
			return
		}
		comp := payroll.NewCompetency(req.Year, time.Month(req.Month))
		opts.Competency = &comp
	}
	if req.Fortnight != nil {
		f := payroll.Fortnight(*req.Fortnight)
		if !f.IsValid() {
			writeError(w, http.StatusBadRequest, "fortnight must be 1 or 2")
			return
		}
		opts.Fortnight = &f
	}
	if req.Days != nil {
		if *req.Days <= 0 {
			writeError(w, http.StatusBadRequest, "days must be positive")
			return
		}
		opts.Days = req.Days
	}
	if req.Rate != nil {
		rate, err := decimal.NewFromString(*req.Rate)
		if err != nil || !rate.IsPositive() {
			writeError(w, http.StatusBadRequest, "rate must be a positive decimal string")
			return
		}
		opts.Rate = &rate
	}
	if req.PaymentDate != nil {
		d, err := time.ParseInLocation("2006-01-02", *req.PaymentDate, h.Engine.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "payment_date must be YYYY-MM-DD")
			return
		}
		opts.PaymentDate = &d
	}

	outcome := h.Engine.RegisterPaymentByID(r.Context(), payroll.EmployeeID(req.EmployeeID), opts)
	writeJSON(w, outcomeStatus(outcome), toOutcomeDTO(outcome))
}

func outcomeStatus(o payroll.Outcome) int {
	switch o.Code {
	case payroll.OutcomeCreated:
		return http.StatusCreated
	case payroll.OutcomeAlreadyPaid, payroll.OutcomeNotYetDue:
		return http.StatusOK
	case payroll.OutcomeMissingRate:
		return http.StatusUnprocessableEntity
	case payroll.OutcomeStoreError:
		if payroll.IsNotFound(o.Err) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// REPORTS
// =============================================================================

// Pending handles GET /api/companies/{id}/pending?year=&month=.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	companyID := payroll.CompanyID(chi.URLParam(r, "id"))
	year, month, ok := competencyParams(w, r, h.Clock(), h.Engine.Location)
	if !ok {
		return
	}

	report, err := h.Engine.ComputePending(r.Context(), companyID, year, month, h.Clock())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute pending report")
		return
	}
	writeJSON(w, http.StatusOK, toPendingReportDTO(report))
}

// Paid handles GET /api/companies/{id}/paid?year=&month=.
func (h *Handler) Paid(w http.ResponseWriter, r *http.Request) {
	companyID := payroll.CompanyID(chi.URLParam(r, "id"))
	year, month, ok := competencyParams(w, r, h.Clock(), h.Engine.Location)
	if !ok {
		return
	}

	report, err := h.Engine.ComputePaid(r.Context(), companyID, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute paid report")
		return
	}
	writeJSON(w, http.StatusOK, toPaidReportDTO(report))
}

// competencyParams reads year/month query params, defaulting to the
// current competency in the business timezone.
func competencyParams(w http.ResponseWriter, r *http.Request, now time.Time, loc *time.Location) (int, time.Month, bool) {
	today := payroll.LocalDate(now, loc)
	year, month := today.Year, today.Month

	if y := r.URL.Query().Get("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "year must be a positive integer")
			return 0, 0, false
		}
		year = v
	}
	if m := r.URL.Query().Get("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			writeError(w, http.StatusBadRequest, "month must be 1-12")
			return 0, 0, false
		}
		month = time.Month(v)
	}
	return year, month, true
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee handles POST /api/employees.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CompanyID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "company_id and name are required")
		return
	}

	emp := payroll.Employee{
		ID:        payroll.EmployeeID(req.ID),
		CompanyID: payroll.CompanyID(req.CompanyID),
		Name:      req.Name,
		Active:    true,
		Cadence:   payroll.Cadence(req.Cadence),
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	if req.Cadence != "" && !emp.Cadence.IsValid() {
		writeError(w, http.StatusBadRequest, "cadence must be monthly, biweekly or daily")
		return
	}

	var err error
	if emp.Rate, err = parseOptionalDecimal(req.Rate); err != nil {
		writeError(w, http.StatusBadRequest, "rate must be a positive decimal string")
		return
	}
	if emp.BaseSalary, err = parseOptionalDecimal(req.BaseSalary); err != nil {
		writeError(w, http.StatusBadRequest, "base_salary must be a positive decimal string")
		return
	}

	emp, err = h.Employees.SaveEmployee(r.Context(), emp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save employee")
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ListEmployees handles GET /api/employees?company={id}.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "company query parameter is required")
		return
	}

	employees, err := h.Engine.Employees.ActiveEmployees(r.Context(), payroll.CompanyID(companyID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}

	out := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetEmployee handles GET /api/employees/{id}.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Engine.Employees.Employee(r.Context(), id)
	if err != nil {
		if errors.Is(err, payroll.ErrEmployeeNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("employee %s not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load employee")
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil || !d.IsPositive() {
		return nil, fmt.Errorf("invalid decimal %q", *s)
	}
	return &d, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorDTO{Error: msg})
}
