package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PREVIEW DTOs ==========

type PreviewPeriod struct {
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type PreviewCompensation struct {
	BasicMonthlySalary decimal.Decimal `json:"basic_monthly_salary"`
	HourlyRate         decimal.Decimal `json:"hourly_rate"`
	OvertimeEligible   bool            `json:"overtime_eligible"`
	LateDeductible     bool            `json:"late_deductible"`
	Category           string          `json:"category"`
	OvertimeMultiplier decimal.Decimal `json:"overtime_multiplier"`
}

type PreviewAttendanceDay struct {
	Date    string  `json:"date"`
	TimeIn  *string `json:"time_in,omitempty"`
	TimeOut *string `json:"time_out,omitempty"`
}

type PreviewOvertime struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
}

// PreviewCalculationRequest runs the engine on caller-supplied data without persisting
type PreviewCalculationRequest struct {
	EmployeeID   string                 `json:"employee_id"`
	Period       PreviewPeriod          `json:"period"`
	Compensation PreviewCompensation    `json:"compensation"`
	Attendance   []PreviewAttendanceDay `json:"attendance"`
	Overtime     []PreviewOvertime      `json:"overtime"`
}

func (r *PreviewCalculationRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.Period.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "period.start_date", Message: "must be YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(r.Period.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "period.end_date", Message: "must be YYYY-MM-DD"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period.end_date", Message: "must not be before start_date"})
	}
	if r.Compensation.BasicMonthlySalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "compensation.basic_monthly_salary", Message: "must be non-negative"})
	}
	if r.Compensation.HourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "compensation.hourly_rate", Message: "must be non-negative"})
	}
	if r.Compensation.OvertimeMultiplier.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "compensation.overtime_multiplier", Message: "must be non-negative"})
	}
	if !PayCategory(r.Compensation.Category).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "compensation.category", Message: "must be 'hourly' or 'salaried'"})
	}
	for i, a := range r.Attendance {
		if _, ok := validator.IsValidDate(a.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("attendance[%d].date", i), Message: "must be YYYY-MM-DD"})
		}
		if a.TimeIn != nil {
			if _, ok := validator.IsValidDateTime(*a.TimeIn); !ok {
				errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("attendance[%d].time_in", i), Message: "must be RFC3339"})
			}
		}
		if a.TimeOut != nil {
			if _, ok := validator.IsValidDateTime(*a.TimeOut); !ok {
				errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("attendance[%d].time_out", i), Message: "must be RFC3339"})
			}
		}
	}
	for i, o := range r.Overtime {
		if _, ok := validator.IsValidDateTime(o.Start); !ok {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("overtime[%d].start", i), Message: "must be RFC3339"})
		}
		if _, ok := validator.IsValidDateTime(o.End); !ok {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("overtime[%d].end", i), Message: "must be RFC3339"})
		}
		switch OvertimeStatus(o.Status) {
		case OvertimeStatusPending, OvertimeStatusApproved, OvertimeStatusRejected:
		default:
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("overtime[%d].status", i), Message: "must be pending, approved or rejected"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToDomain converts a validated request. Call Validate first.
func (r *PreviewCalculationRequest) ToDomain() (CompensationProfile, []AttendanceDay, []OvertimeInterval, PayPeriod) {
	start, _ := validator.IsValidDate(r.Period.StartDate)
	end, _ := validator.IsValidDate(r.Period.EndDate)
	period := PayPeriod{ID: "preview", Label: r.Period.Label, StartDate: start, EndDate: end}

	profile := CompensationProfile{
		EmployeeID:         r.EmployeeID,
		BasicMonthlySalary: r.Compensation.BasicMonthlySalary,
		HourlyRate:         r.Compensation.HourlyRate,
		OvertimeEligible:   r.Compensation.OvertimeEligible,
		LateDeductible:     r.Compensation.LateDeductible,
		Category:           PayCategory(r.Compensation.Category),
		OvertimeMultiplier: r.Compensation.OvertimeMultiplier,
	}

	days := make([]AttendanceDay, 0, len(r.Attendance))
	for _, a := range r.Attendance {
		date, _ := validator.IsValidDate(a.Date)
		day := AttendanceDay{Date: date}
		if a.TimeIn != nil {
			t, _ := validator.IsValidDateTime(*a.TimeIn)
			day.TimeIn = &t
		}
		if a.TimeOut != nil {
			t, _ := validator.IsValidDateTime(*a.TimeOut)
			day.TimeOut = &t
		}
		days = append(days, day)
	}

	intervals := make([]OvertimeInterval, 0, len(r.Overtime))
	for _, o := range r.Overtime {
		s, _ := validator.IsValidDateTime(o.Start)
		e, _ := validator.IsValidDateTime(o.End)
		intervals = append(intervals, OvertimeInterval{Start: s, End: e, Status: OvertimeStatus(o.Status)})
	}

	return profile, days, intervals, period
}

// ========== RESPONSE DTOs ==========

type PayrollCalculationResponse struct {
	EmployeeID          string          `json:"employee_id"`
	PayPeriodID         string          `json:"pay_period_id"`
	BasicPay            decimal.Decimal `json:"basic_pay"`
	AttendanceEarnings  decimal.Decimal `json:"attendance_earnings"`
	OvertimePay         decimal.Decimal `json:"overtime_pay"`
	GrossIncome         decimal.Decimal `json:"gross_income"`
	StatutoryDeductions []DeductionItem `json:"statutory_deductions"`
	StatutoryTotal      decimal.Decimal `json:"statutory_total"`
	TaxableIncome       decimal.Decimal `json:"taxable_income"`
	WithholdingTax      decimal.Decimal `json:"withholding_tax"`
	TotalDeductions     decimal.Decimal `json:"total_deductions"`
	NetSalary           decimal.Decimal `json:"net_salary"`
	WorkedHours         decimal.Decimal `json:"worked_hours"`
	LateHours           decimal.Decimal `json:"late_hours"`
	AbsentDays          int             `json:"absent_days"`
	OvertimeHours       decimal.Decimal `json:"overtime_hours"`
	RateTableVersion    string          `json:"rate_table_version"`
	Anomalies           []Anomaly       `json:"anomalies,omitempty"`
}

type PayrollRecordResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	CreatedAt    string  `json:"created_at"`
	PayrollCalculationResponse
}

type EmployeeOutcomeResponse struct {
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type ProcessingResultResponse struct {
	PayPeriodID    string                    `json:"pay_period_id"`
	ProcessedCount int                       `json:"processed_count"`
	FailedCount    int                       `json:"failed_count"`
	FlaggedCount   int                       `json:"flagged_count"`
	Outcomes       []EmployeeOutcomeResponse `json:"outcomes"`
}

func NewCalculationResponse(c PayrollCalculation) PayrollCalculationResponse {
	return PayrollCalculationResponse{
		EmployeeID:          c.EmployeeID,
		PayPeriodID:         c.PayPeriodID,
		BasicPay:            c.BasicPay,
		AttendanceEarnings:  c.AttendanceEarnings,
		OvertimePay:         c.OvertimePay,
		GrossIncome:         c.GrossIncome,
		StatutoryDeductions: c.StatutoryDeductions,
		StatutoryTotal:      c.StatutoryTotal,
		TaxableIncome:       c.TaxableIncome,
		WithholdingTax:      c.WithholdingTax,
		TotalDeductions:     c.TotalDeductions,
		NetSalary:           c.NetSalary,
		WorkedHours:         c.WorkedHours,
		LateHours:           c.LateHours,
		AbsentDays:          c.AbsentDays,
		OvertimeHours:       c.OvertimeHours,
		RateTableVersion:    c.RateTableVersion,
		Anomalies:           c.Anomalies,
	}
}

func NewRecordResponse(r PayrollRecord) PayrollRecordResponse {
	return PayrollRecordResponse{
		ID:                         r.ID,
		Status:                     string(r.Status),
		EmployeeName:               r.EmployeeName,
		EmployeeCode:               r.EmployeeCode,
		CreatedAt:                  r.CreatedAt.Format(time.RFC3339),
		PayrollCalculationResponse: NewCalculationResponse(r.PayrollCalculation),
	}
}

func NewProcessingResultResponse(r ProcessingResult) ProcessingResultResponse {
	outcomes := make([]EmployeeOutcomeResponse, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		resp := EmployeeOutcomeResponse{EmployeeID: o.EmployeeID, Status: string(o.Status)}
		if o.Err != nil {
			resp.Error = o.Err.Error()
		}
		outcomes = append(outcomes, resp)
	}
	return ProcessingResultResponse{
		PayPeriodID:    r.PayPeriodID,
		ProcessedCount: r.ProcessedCount,
		FailedCount:    r.FailedCount,
		FlaggedCount:   r.FlaggedCount,
		Outcomes:       outcomes,
	}
}
