package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agenciabaepi/meugestor-payroll/payroll"
)

// =============================================================================
// PENDING AGGREGATOR
// =============================================================================

func TestComputePending_MixedCompany(t *testing.T) {
	// GIVEN: A company with a monthly, a biweekly, a daily and a rate-less
	//        employee; the biweekly one has fortnight 1 already paid;
	//        now = March 20 (due set {1,2})
	// WHEN: Computing the pending report for March 2025
	// THEN: monthly owes 3000, biweekly owes fortnight 2 (1000), daily is
	//       absent, the rate-less employee counts as unknown

	ctx := context.Background()
	engine, mem := newTestEngine()

	addEmployee(t, mem, payroll.Employee{
		ID: "m-1", CompanyID: "company-1", Name: "Mensal", Active: true,
		Cadence: payroll.CadenceMonthly, Rate: dec(3000),
	})
	biweekly := addEmployee(t, mem, biweeklyEmployee("b-1", dec(1000)))
	addEmployee(t, mem, payroll.Employee{
		ID: "d-1", CompanyID: "company-1", Name: "Diarista", Active: true,
		Cadence: payroll.CadenceDaily, Rate: dec(100),
	})
	addEmployee(t, mem, payroll.Employee{
		ID: "u-1", CompanyID: "company-1", Name: "SemSalario", Active: true,
		Cadence: payroll.CadenceMonthly,
	})

	f := payroll.FortnightFirst
	setup := engine.RegisterPayment(ctx, biweekly, payroll.RegisterOptions{Now: march20(), Fortnight: &f})
	if setup.Code != payroll.OutcomeCreated {
		t.Fatalf("setup: %+v", setup)
	}

	report, err := engine.ComputePending(ctx, "company-1", 2025, time.March, march20())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// monthly item + biweekly fortnight 2 + unknown-rate item
	if len(report.Items) != 3 {
		t.Fatalf("expected 3 pending items, got %d: %+v", len(report.Items), report.Items)
	}
	if !report.Total.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("expected total 4000, got %v", report.Total)
	}
	if report.UnknownRateCount != 1 {
		t.Errorf("expected 1 unknown-rate item, got %d", report.UnknownRateCount)
	}

	for _, item := range report.Items {
		if item.EmployeeID == "d-1" {
			t.Error("daily-cadence employees must never appear in pending")
		}
		if item.EmployeeID == "b-1" {
			if item.Competency.Fortnight == nil || *item.Competency.Fortnight != payroll.FortnightSecond {
				t.Errorf("expected only fortnight 2 pending for the biweekly employee, got %+v", item)
			}
		}
		if item.EmployeeID == "u-1" && item.Amount != nil {
			t.Error("unknown-rate items must carry a nil amount, never zero")
		}
	}
}

func TestComputePending_TotalMatchesKnownItems(t *testing.T) {
	// Aggregate consistency: Total equals the sum of item amounts with a
	// known rate; unknown-rate items only increment the counter.

	ctx := context.Background()
	engine, mem := newTestEngine()

	addEmployee(t, mem, monthlyEmployee("m-1", dec(1200)))
	addEmployee(t, mem, biweeklyEmployee("b-1", dec(700)))
	addEmployee(t, mem, payroll.Employee{
		ID: "u-1", CompanyID: "company-1", Name: "Sem", Active: true,
		Cadence: payroll.CadenceBiweekly,
	})

	report, err := engine.ComputePending(ctx, "company-1", 2025, time.March, march20())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.Zero
	unknown := 0
	for _, item := range report.Items {
		if item.Amount != nil {
			sum = sum.Add(*item.Amount)
		} else {
			unknown++
		}
	}
	if !report.Total.Equal(sum) {
		t.Errorf("total %v does not match item sum %v", report.Total, sum)
	}
	if report.UnknownRateCount != unknown {
		t.Errorf("unknown counter %d does not match nil-amount items %d", report.UnknownRateCount, unknown)
	}
	// biweekly with due set {1,2} and no payments: two unknown items
	if unknown != 2 {
		t.Errorf("expected 2 unknown items (both fortnights), got %d", unknown)
	}
}

func TestComputePending_FutureCompetency_Empty(t *testing.T) {
	// Nothing can be owed for a month that has not started.

	ctx := context.Background()
	engine, mem := newTestEngine()
	addEmployee(t, mem, biweeklyEmployee("b-1", dec(1000)))
	addEmployee(t, mem, monthlyEmployee("m-1", dec(2000)))

	report, err := engine.ComputePending(ctx, "company-1", 2025, time.April, march20())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The monthly employee IS listed (a monthly salary pends for any
	// competency without a recorded payment), but no biweekly fortnight is.
	for _, item := range report.Items {
		if item.Cadence == payroll.CadenceBiweekly {
			t.Errorf("no biweekly fortnight should pend for a future month, got %+v", item)
		}
	}
}

func TestComputePending_InactiveEmployeesSkipped(t *testing.T) {
	ctx := context.Background()
	engine, mem := newTestEngine()
	addEmployee(t, mem, payroll.Employee{
		ID: "x-1", CompanyID: "company-1", Name: "Desligado", Active: false,
		Cadence: payroll.CadenceMonthly, Rate: dec(1000),
	})

	report, err := engine.ComputePending(ctx, "company-1", 2025, time.March, march20())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Items) != 0 {
		t.Errorf("inactive employees must not pend, got %+v", report.Items)
	}
}

// =============================================================================
// PAID AGGREGATOR
// =============================================================================

func TestComputePaid_GroupsByEmployee(t *testing.T) {
	// GIVEN: Two payments for one biweekly employee and one for a monthly
	// WHEN: Computing the paid report for March
	// THEN: Events group per employee with correct per-employee and
	//       overall totals

	ctx := context.Background()
	engine, mem := newTestEngine()
	biweekly := addEmployee(t, mem, biweeklyEmployee("b-1", dec(1000)))
	monthly := addEmployee(t, mem, monthlyEmployee("m-1", dec(3000)))

	engine.RegisterPayment(ctx, biweekly, payroll.RegisterOptions{Now: march20()})
	engine.RegisterPayment(ctx, biweekly, payroll.RegisterOptions{Now: march20()})
	engine.RegisterPayment(ctx, monthly, payroll.RegisterOptions{Now: march20()})

	report, err := engine.ComputePaid(ctx, "company-1", 2025, time.March)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Employees) != 2 {
		t.Fatalf("expected 2 employee groups, got %d", len(report.Employees))
	}
	if !report.Total.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected overall total 5000, got %v", report.Total)
	}

	for _, pe := range report.Employees {
		switch pe.EmployeeID {
		case "b-1":
			if len(pe.Events) != 2 || !pe.Total.Equal(decimal.NewFromInt(2000)) {
				t.Errorf("biweekly group: expected 2 events totaling 2000, got %d events, total %v", len(pe.Events), pe.Total)
			}
		case "m-1":
			if len(pe.Events) != 1 || !pe.Total.Equal(decimal.NewFromInt(3000)) {
				t.Errorf("monthly group: expected 1 event totaling 3000, got %d events, total %v", len(pe.Events), pe.Total)
			}
		default:
			t.Errorf("unexpected employee group %q", pe.EmployeeID)
		}
	}
}

func TestComputePaid_DeactivatedEmployeeKeepsName(t *testing.T) {
	// GIVEN: An employee paid for March and deactivated afterwards
	// WHEN: Computing the paid report for March
	// THEN: The report still shows the employee's name, not the raw ID

	ctx := context.Background()
	engine, mem := newTestEngine()
	monthly := addEmployee(t, mem, monthlyEmployee("m-1", dec(3000)))

	out := engine.RegisterPayment(ctx, monthly, payroll.RegisterOptions{Now: march20()})
	if out.Code != payroll.OutcomeCreated {
		t.Fatalf("setup payment failed: %+v", out)
	}

	monthly.Active = false
	addEmployee(t, mem, monthly)

	report, err := engine.ComputePaid(ctx, "company-1", 2025, time.March)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Employees) != 1 {
		t.Fatalf("expected 1 employee group, got %d", len(report.Employees))
	}
	if report.Employees[0].Name != monthly.Name {
		t.Errorf("expected name %q, got %q", monthly.Name, report.Employees[0].Name)
	}
}

func TestComputePaid_EmptyCompetency(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine()

	report, err := engine.ComputePaid(ctx, "company-1", 2025, time.March)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Employees) != 0 || !report.Total.Equal(decimal.Zero) {
		t.Errorf("expected an empty report, got %+v", report)
	}
}
