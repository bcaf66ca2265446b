/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts travel as decimal strings ("1000.00"), never JSON numbers, so
  no precision is lost crossing the wire.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/agenciabaepi/meugestor-payroll/payroll"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// RegisterPaymentRequest is the body of POST /api/payments.
// Year/Month default to the current competency; the remaining fields are
// the engine's optional overrides.
type RegisterPaymentRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Year        int     `json:"year,omitempty"`
	Month       int     `json:"month,omitempty"`
	Fortnight   *int    `json:"fortnight,omitempty"`
	Days        *int    `json:"days,omitempty"`
	Rate        *string `json:"rate,omitempty"`
	PaymentDate *string `json:"payment_date,omitempty"` // "2006-01-02"
	ActorID     string  `json:"actor_id,omitempty"`
}

// CreateEmployeeRequest is the body of POST /api/employees.
type CreateEmployeeRequest struct {
	ID         string  `json:"id,omitempty"`
	CompanyID  string  `json:"company_id"`
	Name       string  `json:"name"`
	Active     *bool   `json:"active,omitempty"`
	Cadence    string  `json:"cadence,omitempty"`
	Rate       *string `json:"rate,omitempty"`
	BaseSalary *string `json:"base_salary,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// OutcomeDTO is the API rendering of a registration outcome.
type OutcomeDTO struct {
	OK          bool             `json:"ok"`
	AlreadyPaid bool             `json:"already_paid,omitempty"`
	Code        string           `json:"code"`
	Message     string           `json:"message"`
	Data        *DisbursementDTO `json:"data,omitempty"`
}

// DisbursementDTO describes the record pair a created payment produced.
type DisbursementDTO struct {
	LedgerEntryID  string        `json:"ledger_entry_id"`
	PaymentEventID string        `json:"payment_event_id"`
	Competency     CompetencyDTO `json:"competency"`
	Amount         string        `json:"amount"`
}

type CompetencyDTO struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Fortnight *int   `json:"fortnight,omitempty"`
	Label     string `json:"label"`
}

type EmployeeDTO struct {
	ID         string  `json:"id"`
	CompanyID  string  `json:"company_id"`
	Name       string  `json:"name"`
	Active     bool    `json:"active"`
	Cadence    string  `json:"cadence"`
	Rate       *string `json:"rate,omitempty"`
	BaseSalary *string `json:"base_salary,omitempty"`
}

type PendingItemDTO struct {
	EmployeeID string        `json:"employee_id"`
	Name       string        `json:"name"`
	Cadence    string        `json:"cadence"`
	Competency CompetencyDTO `json:"competency"`
	Amount     *string       `json:"amount,omitempty"`
}

type PendingReportDTO struct {
	CompanyID      string           `json:"company_id"`
	Competency     CompetencyDTO    `json:"competency"`
	Items          []PendingItemDTO `json:"items"`
	TotalAmount    string           `json:"total_amount"`
	PendingUnknown int              `json:"total_pending_unknown"`
}

type PaymentEventDTO struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employee_id"`
	Amount     string        `json:"amount"`
	PaidAt     string        `json:"paid_at"`
	Cadence    string        `json:"cadence"`
	Competency CompetencyDTO `json:"competency"`
	Days       int           `json:"days,omitempty"`
	Status     string        `json:"status"`
}

type PaidEmployeeDTO struct {
	EmployeeID string            `json:"employee_id"`
	Name       string            `json:"name"`
	Total      string            `json:"total"`
	Events     []PaymentEventDTO `json:"events"`
}

type PaidReportDTO struct {
	CompanyID   string            `json:"company_id"`
	Competency  CompetencyDTO     `json:"competency"`
	Employees   []PaidEmployeeDTO `json:"employees"`
	TotalAmount string            `json:"total_amount"`
}

type ErrorDTO struct {
	Error string `json:"error"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toCompetencyDTO(c payroll.Competency) CompetencyDTO {
	dto := CompetencyDTO{Year: c.Year, Month: int(c.Month), Label: c.FullLabel()}
	if c.Fortnight != nil {
		f := int(*c.Fortnight)
		dto.Fortnight = &f
	}
	return dto
}

func toOutcomeDTO(o payroll.Outcome) OutcomeDTO {
	dto := OutcomeDTO{
		OK:          o.OK,
		AlreadyPaid: o.AlreadyPaid,
		Code:        string(o.Code),
		Message:     o.Message,
	}
	if o.Result != nil {
		dto.Data = &DisbursementDTO{
			LedgerEntryID:  o.Result.Entry.ID,
			PaymentEventID: o.Result.Event.ID,
			Competency:     toCompetencyDTO(o.Result.Competency),
			Amount:         o.Result.Amount.StringFixed(2),
		}
	}
	return dto
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:        string(e.ID),
		CompanyID: string(e.CompanyID),
		Name:      e.Name,
		Active:    e.Active,
		Cadence:   string(e.Cadence),
	}
	if e.Rate != nil {
		v := e.Rate.StringFixed(2)
		dto.Rate = &v
	}
	if e.BaseSalary != nil {
		v := e.BaseSalary.StringFixed(2)
		dto.BaseSalary = &v
	}
	return dto
}

func toPendingReportDTO(r payroll.PendingReport) PendingReportDTO {
	dto := PendingReportDTO{
		CompanyID:      string(r.CompanyID),
		Competency:     toCompetencyDTO(r.Competency),
		Items:          []PendingItemDTO{},
		TotalAmount:    r.Total.StringFixed(2),
		PendingUnknown: r.UnknownRateCount,
	}
	for _, item := range r.Items {
		itemDTO := PendingItemDTO{
			EmployeeID: string(item.EmployeeID),
			Name:       item.Name,
			Cadence:    string(item.Cadence),
			Competency: toCompetencyDTO(item.Competency),
		}
		if item.Amount != nil {
			v := item.Amount.StringFixed(2)
			itemDTO.Amount = &v
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	return dto
}

func toPaidReportDTO(r payroll.PaidReport) PaidReportDTO {
	dto := PaidReportDTO{
		CompanyID:   string(r.CompanyID),
		Competency:  toCompetencyDTO(r.Competency),
		Employees:   []PaidEmployeeDTO{},
		TotalAmount: r.Total.StringFixed(2),
	}
	for _, pe := range r.Employees {
		peDTO := PaidEmployeeDTO{
			EmployeeID: string(pe.EmployeeID),
			Name:       pe.Name,
			Total:      pe.Total.StringFixed(2),
		}
		for _, ev := range pe.Events {
			peDTO.Events = append(peDTO.Events, PaymentEventDTO{
				ID:         ev.ID,
				EmployeeID: string(ev.EmployeeID),
				Amount:     ev.Amount.StringFixed(2),
				PaidAt:     ev.PaidAt.Format(time.RFC3339),
				Cadence:    string(ev.Cadence),
				Competency: toCompetencyDTO(ev.Competency),
				Days:       ev.Days,
				Status:     ev.Status,
			})
		}
		dto.Employees = append(dto.Employees, peDTO)
	}
	return dto
}
