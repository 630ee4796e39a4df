package payroll

import "errors"

var (
	ErrPayPeriodNotFound     = errors.New("pay period not found")
	ErrInvalidPeriod         = errors.New("invalid payroll period")
	ErrInvalidCompensation   = errors.New("invalid compensation profile")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeNotEligible   = errors.New("employee is not eligible for payroll in this period")
	ErrPayrollRecordNotFound = errors.New("payroll record not found")
	ErrNegativeNetSalary     = errors.New("net salary is negative, flagged for review")
	ErrRateTableNotFound     = errors.New("no rate table effective for this period")
	ErrInvalidRateTable      = errors.New("invalid rate table")
)
