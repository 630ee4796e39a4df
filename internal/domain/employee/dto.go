package employee

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ChangeCompensationRequest struct {
	EmployeeID       string           `json:"-"`
	ExpectedVersion  int              `json:"expected_version"`
	BaseSalary       *decimal.Decimal `json:"base_salary,omitempty"`
	HourlyRate       *decimal.Decimal `json:"hourly_rate,omitempty"`
	OvertimeEligible bool             `json:"overtime_eligible"`
	LateDeductible   bool             `json:"late_deductible"`
	EffectiveDate    string           `json:"effective_date"`
	Reason           string           `json:"reason"`
}

func (r *ChangeCompensationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.ExpectedVersion < 0 {
		errs = append(errs, validator.ValidationError{Field: "expected_version", Message: "must be non-negative"})
	}
	if r.BaseSalary == nil && r.HourlyRate == nil {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: ErrCompensationNotProvided.Error()})
	}
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "hourly_rate", Message: "must be non-negative"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be YYYY-MM-DD"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	} else if len(r.Reason) > 255 {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "must not exceed 255 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CompensationChangeResponse struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	FromVersion      int              `json:"from_version"`
	ToVersion        int              `json:"to_version"`
	BaseSalary       *decimal.Decimal `json:"base_salary,omitempty"`
	HourlyRate       *decimal.Decimal `json:"hourly_rate,omitempty"`
	OvertimeEligible bool             `json:"overtime_eligible"`
	LateDeductible   bool             `json:"late_deductible"`
	EffectiveDate    string           `json:"effective_date"`
	Reason           string           `json:"reason"`
	ChangedBy        string           `json:"changed_by"`
	CreatedAt        string           `json:"created_at"`
}
