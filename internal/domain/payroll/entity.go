package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayCategory - How attendance turns into pay for a position
type PayCategory string

const (
	// PayCategoryHourly is paid strictly for worked hours
	PayCategoryHourly PayCategory = "hourly"
	// PayCategorySalaried receives late/absence deductions against basic pay
	PayCategorySalaried PayCategory = "salaried"
)

func (c PayCategory) IsValid() bool {
	return c == PayCategoryHourly || c == PayCategorySalaried
}

// CompensationProfile - Pay basis of one employee for one calculation.
// Resolved from the employee record and its position, never stored.
type CompensationProfile struct {
	EmployeeID         string
	BasicMonthlySalary decimal.Decimal
	HourlyRate         decimal.Decimal
	OvertimeEligible   bool
	LateDeductible     bool
	Category           PayCategory
	OvertimeMultiplier decimal.Decimal
}

// Validate rejects negative pay inputs
func (p CompensationProfile) Validate() error {
	if p.BasicMonthlySalary.IsNegative() || p.HourlyRate.IsNegative() || p.OvertimeMultiplier.IsNegative() {
		return ErrInvalidCompensation
	}
	if !p.Category.IsValid() {
		return ErrInvalidCompensation
	}
	return nil
}

// PayPeriod - Semi-monthly payroll window, both dates inclusive
type PayPeriod struct {
	ID        string
	CompanyID string
	Label     string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

func (p PayPeriod) Validate() error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() || p.EndDate.Before(p.StartDate) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains reports whether the calendar date of t lies inside the period
func (p PayPeriod) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(DateOf(p.StartDate)) && !d.After(DateOf(p.EndDate))
}

// DateOf returns the calendar date of t, as seen in t's own location, at midnight UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AttendanceDay - Punches of one employee on one calendar day
type AttendanceDay struct {
	Date    time.Time
	TimeIn  *time.Time
	TimeOut *time.Time
}

// OvertimeStatus enum
type OvertimeStatus string

const (
	OvertimeStatusPending  OvertimeStatus = "pending"
	OvertimeStatusApproved OvertimeStatus = "approved"
	OvertimeStatusRejected OvertimeStatus = "rejected"
)

// OvertimeInterval - A requested overtime block
type OvertimeInterval struct {
	ID     string
	Start  time.Time
	End    time.Time
	Status OvertimeStatus
}

// DeductionItem - One statutory contribution line
type DeductionItem struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// AnomalyType enum
type AnomalyType string

const (
	AnomalyMalformedAttendance AnomalyType = "malformed_attendance"
	AnomalyMalformedOvertime   AnomalyType = "malformed_overtime"
	AnomalyNegativeNet         AnomalyType = "negative_net_salary"
)

// Anomaly - Non-fatal finding attached to a calculation
type Anomaly struct {
	Type    AnomalyType `json:"type"`
	Date    *time.Time  `json:"date,omitempty"`
	Message string      `json:"message"`
}

// PayrollCalculation - Output of one engine run. Every money field is already
// rounded to 2 decimals; none is derived later from unrounded values.
type PayrollCalculation struct {
	EmployeeID          string
	PayPeriodID         string
	BasicPay            decimal.Decimal
	AttendanceEarnings  decimal.Decimal
	OvertimePay         decimal.Decimal
	GrossIncome         decimal.Decimal
	StatutoryDeductions []DeductionItem
	StatutoryTotal      decimal.Decimal
	TaxableIncome       decimal.Decimal
	WithholdingTax      decimal.Decimal
	TotalDeductions     decimal.Decimal
	NetSalary           decimal.Decimal

	// Inputs kept for audit
	WorkedHours      decimal.Decimal
	LateHours        decimal.Decimal
	AbsentDays       int
	OvertimeHours    decimal.Decimal
	RateTableVersion string
	Anomalies        []Anomaly
}

// HasAnomaly reports whether an anomaly of the given type was recorded
func (c PayrollCalculation) HasAnomaly(t AnomalyType) bool {
	for _, a := range c.Anomalies {
		if a.Type == t {
			return true
		}
	}
	return false
}

// RecordStatus enum
type RecordStatus string

const (
	RecordStatusDraft       RecordStatus = "draft"
	RecordStatusNeedsReview RecordStatus = "needs_review"
)

// PayrollRecord - Persisted calculation, unique per (employee, pay period)
type PayrollRecord struct {
	ID        string
	CompanyID string
	Status    RecordStatus
	PayrollCalculation
	CreatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// UpsertResult - Outcome of an insert-if-absent write
type UpsertResult string

const (
	UpsertInserted       UpsertResult = "inserted"
	UpsertAlreadyPresent UpsertResult = "already_present"
)

// OutcomeStatus enum
type OutcomeStatus string

const (
	OutcomeInserted         OutcomeStatus = "inserted"
	OutcomeAlreadyProcessed OutcomeStatus = "already_processed"
	OutcomeFlagged          OutcomeStatus = "flagged"
	OutcomeFailed           OutcomeStatus = "failed"
)

// EmployeeOutcome - Result of processing one employee
type EmployeeOutcome struct {
	EmployeeID string
	Status     OutcomeStatus
	Err        error
}

// Succeeded is true for every status except failed
func (o EmployeeOutcome) Succeeded() bool {
	return o.Status != OutcomeFailed
}

// ProcessingResult - Batch summary, built fresh per call
type ProcessingResult struct {
	PayPeriodID    string
	ProcessedCount int
	FailedCount    int
	FlaggedCount   int
	Outcomes       []EmployeeOutcome
}

func (r *ProcessingResult) Add(o EmployeeOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case OutcomeFailed:
		r.FailedCount++
	case OutcomeFlagged:
		r.ProcessedCount++
		r.FlaggedCount++
	default:
		r.ProcessedCount++
	}
}
