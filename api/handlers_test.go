/*
handlers_test.go - HTTP-level tests for the payroll API

Tests for:
- Payment registration (status codes per outcome)
- Request validation
- Pending and paid reports
- Employee endpoints
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agenciabaepi/meugestor-payroll/payroll"
	"github.com/agenciabaepi/meugestor-payroll/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestServer wires a memory store behind the real router with the
// clock pinned to March 20, 2025.
func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	engine := payroll.NewEngine(mem, mem, mem, time.UTC)
	handler := NewHandler(engine, mem)
	handler.Clock = func() time.Time {
		return time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	}

	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, mem
}

func seedEmployee(t *testing.T, mem *store.Memory, id string, cadence payroll.Cadence, rate int64) {
	t.Helper()

	r := decimal.NewFromInt(rate)
	emp := payroll.Employee{
		ID:        payroll.EmployeeID(id),
		CompanyID: "company-1",
		Name:      "Maria",
		Active:    true,
		Cadence:   cadence,
	}
	if rate > 0 {
		emp.Rate = &r
	}
	if _, err := mem.SaveEmployee(context.Background(), emp); err != nil {
		t.Fatalf("failed to seed employee: %v", err)
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// =============================================================================
// PAYMENT REGISTRATION
// =============================================================================

func TestRegisterPayment_Created(t *testing.T) {
	// GIVEN: A biweekly employee with a configured rate
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-1", payroll.CadenceBiweekly, 1000)

	// WHEN: Registering a payment on March 20
	resp := postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{EmployeeID: "emp-1"})

	// THEN: 201 with a created outcome for the first fortnight
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var out OutcomeDTO
	decodeBody(t, resp, &out)
	if !out.OK {
		t.Errorf("Expected ok outcome, got %+v", out)
	}
	if out.Code != string(payroll.OutcomeCreated) {
		t.Errorf("Expected created code, got %q", out.Code)
	}
	if out.Data == nil {
		t.Fatal("Expected disbursement in response")
	}
	if out.Data.Competency.Fortnight == nil || *out.Data.Competency.Fortnight != 1 {
		t.Errorf("Expected first fortnight, got %+v", out.Data.Competency)
	}
	if out.Data.Amount != "1000.00" {
		t.Errorf("Expected amount 1000.00, got %q", out.Data.Amount)
	}
}

func TestRegisterPayment_AlreadyPaid_Is200(t *testing.T) {
	// GIVEN: A monthly employee already paid for the competency
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-1", payroll.CadenceMonthly, 3000)

	resp := postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{EmployeeID: "emp-1"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Setup payment failed with %d", resp.StatusCode)
	}

	// WHEN: Registering again
	resp = postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{EmployeeID: "emp-1"})

	// THEN: 200 already_paid, and still a single event
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var out OutcomeDTO
	decodeBody(t, resp, &out)
	if out.Code != string(payroll.OutcomeAlreadyPaid) {
		t.Errorf("Expected already_paid, got %q", out.Code)
	}
	if !out.AlreadyPaid {
		t.Error("Expected already_paid flag set")
	}
	if len(mem.Events()) != 1 {
		t.Errorf("Expected exactly one event, got %d", len(mem.Events()))
	}
}

func TestRegisterPayment_MissingRate_Is422(t *testing.T) {
	// GIVEN: An employee with no rate and no base salary
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-1", payroll.CadenceMonthly, 0)

	// WHEN: Registering a payment
	resp := postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{EmployeeID: "emp-1"})

	// THEN: 422, nothing written
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.StatusCode)
	}
	var out OutcomeDTO
	decodeBody(t, resp, &out)
	if out.Code != string(payroll.OutcomeMissingRate) {
		t.Errorf("Expected missing_rate, got %q", out.Code)
	}
	if len(mem.Events()) != 0 || len(mem.Entries()) != 0 {
		t.Error("Expected no writes for a blocked registration")
	}
}

func TestRegisterPayment_UnknownEmployee_Is404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{EmployeeID: "ghost"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestRegisterPayment_Validation(t *testing.T) {
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-1", payroll.CadenceBiweekly, 1000)

	bad := func(v int) *int { return &v }
	cases := []struct {
		name string
		req  RegisterPaymentRequest
	}{
		{"missing employee", RegisterPaymentRequest{}},
		{"invalid month", RegisterPaymentRequest{EmployeeID: "emp-1", Year: 2025, Month: 13}},
		{"invalid fortnight", RegisterPaymentRequest{EmployeeID: "emp-1", Fortnight: bad(3)}},
		{"zero days", RegisterPaymentRequest{EmployeeID: "emp-1", Days: bad(0)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/payments", tc.req)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestRegisterPayment_ExplicitCompetencyAndFortnight(t *testing.T) {
	// GIVEN: A biweekly employee
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-1", payroll.CadenceBiweekly, 1000)

	// WHEN: Asking for the second fortnight explicitly (not yet due on March 20)
	f := 2
	resp := postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{
		EmployeeID: "emp-1", Year: 2025, Month: 3, Fortnight: &f,
	})

	// THEN: The override wins and the payment is created
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var out OutcomeDTO
	decodeBody(t, resp, &out)
	if out.Data.Competency.Fortnight == nil || *out.Data.Competency.Fortnight != 2 {
		t.Errorf("Expected second fortnight, got %+v", out.Data.Competency)
	}
	if len(mem.Events()) != 1 {
		t.Errorf("Expected one event, got %d", len(mem.Events()))
	}
}

// =============================================================================
// REPORTS
// =============================================================================

func TestPendingReport(t *testing.T) {
	// GIVEN: A monthly and a biweekly employee, one fortnight already paid
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-monthly", payroll.CadenceMonthly, 3000)
	seedEmployee(t, mem, "emp-biweekly", payroll.CadenceBiweekly, 1000)

	resp := postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{EmployeeID: "emp-biweekly"})
	resp.Body.Close()

	// WHEN: Fetching pending for the current competency
	resp, err := http.Get(srv.URL + "/api/companies/company-1/pending")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// THEN: Only the monthly salary and the second fortnight pend
	var report PendingReportDTO
	decodeBody(t, resp, &report)
	if report.Competency.Year != 2025 || report.Competency.Month != 3 {
		t.Errorf("Expected competency 03/2025, got %+v", report.Competency)
	}
	if len(report.Items) != 2 {
		t.Fatalf("Expected 2 pending items, got %d", len(report.Items))
	}
	if report.TotalAmount != "4000.00" {
		t.Errorf("Expected total 4000.00, got %q", report.TotalAmount)
	}
}

func TestPendingReport_ExplicitCompetency(t *testing.T) {
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-1", payroll.CadenceBiweekly, 1000)

	// February is fully elapsed: both fortnights pend.
	resp, err := http.Get(srv.URL + "/api/companies/company-1/pending?year=2025&month=2")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var report PendingReportDTO
	decodeBody(t, resp, &report)
	if len(report.Items) != 2 {
		t.Fatalf("Expected 2 pending fortnights, got %d", len(report.Items))
	}
	if report.TotalAmount != "2000.00" {
		t.Errorf("Expected total 2000.00, got %q", report.TotalAmount)
	}
}

func TestPendingReport_BadParams(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, q := range []string{"?year=abc", "?month=0", "?month=13"} {
		resp, err := http.Get(srv.URL + "/api/companies/company-1/pending" + q)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", q, resp.StatusCode)
		}
	}
}

func TestPaidReport(t *testing.T) {
	// GIVEN: Two payments registered for one employee
	srv, mem := newTestServer(t)
	seedEmployee(t, mem, "emp-1", payroll.CadenceBiweekly, 1000)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, srv.URL+"/api/payments", RegisterPaymentRequest{EmployeeID: "emp-1"})
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Payment %d failed with %d", i+1, resp.StatusCode)
		}
	}

	// WHEN: Fetching the paid report
	resp, err := http.Get(srv.URL + "/api/companies/company-1/paid")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// THEN: One employee with two events totalling both fortnights
	var report PaidReportDTO
	decodeBody(t, resp, &report)
	if len(report.Employees) != 1 {
		t.Fatalf("Expected 1 paid employee, got %d", len(report.Employees))
	}
	if len(report.Employees[0].Events) != 2 {
		t.Errorf("Expected 2 events, got %d", len(report.Employees[0].Events))
	}
	if report.TotalAmount != "2000.00" {
		t.Errorf("Expected total 2000.00, got %q", report.TotalAmount)
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateAndGetEmployee(t *testing.T) {
	srv, _ := newTestServer(t)

	rate := "1500.00"
	resp := postJSON(t, srv.URL+"/api/employees", CreateEmployeeRequest{
		CompanyID: "company-1",
		Name:      "Carlos",
		Cadence:   "daily",
		Rate:      &rate,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var created EmployeeDTO
	decodeBody(t, resp, &created)
	if created.ID == "" {
		t.Fatal("Expected a generated employee ID")
	}
	if created.Cadence != "daily" {
		t.Errorf("Expected daily cadence, got %q", created.Cadence)
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/employees/%s", srv.URL, created.ID))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var got EmployeeDTO
	decodeBody(t, resp, &got)
	if got.Name != "Carlos" {
		t.Errorf("Expected Carlos, got %q", got.Name)
	}
	if got.Rate == nil || *got.Rate != "1500.00" {
		t.Errorf("Expected rate 1500.00, got %v", got.Rate)
	}
}

func TestCreateEmployee_InvalidCadence(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/employees", CreateEmployeeRequest{
		CompanyID: "company-1", Name: "Carlos", Cadence: "weekly",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestListEmployees_RequiresCompany(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/employees")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
