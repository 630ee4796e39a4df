package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ResolveCompensation derives the pay basis of emp from its own record and its position.
// Positions without an overtime multiplier make the employee overtime-ineligible.
func ResolveCompensation(emp employee.Employee, pos position.Position) (payroll.CompensationProfile, error) {
	if !emp.HasCompensation() {
		return payroll.CompensationProfile{}, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotEligible, employee.ErrCompensationNotProvided)
	}
	if pos.ID != emp.PositionID || pos.CompanyID != emp.CompanyID {
		return payroll.CompensationProfile{}, fmt.Errorf("%w: position %s does not belong to employee", payroll.ErrInvalidCompensation, pos.ID)
	}

	profile := payroll.CompensationProfile{
		EmployeeID:         emp.ID,
		BasicMonthlySalary: decimal.Zero,
		HourlyRate:         decimal.Zero,
		OvertimeEligible:   emp.OvertimeEligible && pos.AllowsOvertime(),
		LateDeductible:     emp.LateDeductible,
		Category:           pos.PayCategory,
		OvertimeMultiplier: pos.OvertimeMultiplier,
	}
	if emp.BaseSalary != nil {
		profile.BasicMonthlySalary = *emp.BaseSalary
	}
	if emp.HourlyRate != nil {
		profile.HourlyRate = *emp.HourlyRate
	}

	if err := profile.Validate(); err != nil {
		return payroll.CompensationProfile{}, err
	}
	return profile, nil
}
