package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var semiMonthlyDivisor = decimal.NewFromInt(2)

// Engine turns one employee's inputs for one period into a PayrollCalculation.
// It holds only the rate table it was built from and is safe for concurrent use.
type Engine struct {
	version     string
	policy      payroll.AttendancePolicy
	statutory   *StatutoryCalculator
	withholding *WithholdingCalculator
}

func NewEngine(table payroll.RateTable) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	withholding, err := NewWithholdingCalculator(table.TaxBrackets)
	if err != nil {
		return nil, err
	}
	return &Engine{
		version:     table.Version,
		policy:      table.Attendance,
		statutory:   NewStatutoryCalculator(table.Contributions),
		withholding: withholding,
	}, nil
}

// Version of the rate table the engine applies
func (e *Engine) Version() string {
	return e.version
}

// Calculate never clamps net salary. A negative result is returned with a
// negative_net_salary anomaly for the caller to flag.
func (e *Engine) Calculate(
	profile payroll.CompensationProfile,
	days []payroll.AttendanceDay,
	intervals []payroll.OvertimeInterval,
	period payroll.PayPeriod,
) (payroll.PayrollCalculation, error) {
	if err := period.Validate(); err != nil {
		return payroll.PayrollCalculation{}, err
	}
	if err := profile.Validate(); err != nil {
		return payroll.PayrollCalculation{}, err
	}

	basicPay := profile.BasicMonthlySalary.Div(semiMonthlyDivisor).Round(2)

	att := AggregateAttendance(days, period, e.policy)
	attendanceEarnings := e.attendanceEarnings(profile, att)

	ot := AggregateOvertime(intervals, period)
	overtimePay := decimal.Zero
	if profile.OvertimeEligible && profile.OvertimeMultiplier.IsPositive() {
		overtimePay = OvertimePay(ot.Hours, profile.HourlyRate, profile.OvertimeMultiplier)
	}

	gross := basicPay.Add(attendanceEarnings).Add(overtimePay)

	items, statutoryTotal := e.statutory.Calculate(profile.BasicMonthlySalary)

	taxable := gross.Sub(statutoryTotal)
	taxInput := taxable
	if taxInput.IsNegative() {
		taxInput = decimal.Zero
	}
	tax := e.withholding.Calculate(taxInput)

	totalDeductions := statutoryTotal.Add(tax)
	net := gross.Sub(totalDeductions)

	anomalies := make([]payroll.Anomaly, 0, len(att.Anomalies)+len(ot.Anomalies)+1)
	anomalies = append(anomalies, att.Anomalies...)
	anomalies = append(anomalies, ot.Anomalies...)
	if net.IsNegative() {
		anomalies = append(anomalies, payroll.Anomaly{
			Type:    payroll.AnomalyNegativeNet,
			Message: fmt.Sprintf("net salary %s is below zero (gross %s, deductions %s)", net.StringFixed(2), gross.StringFixed(2), totalDeductions.StringFixed(2)),
		})
	}

	return payroll.PayrollCalculation{
		EmployeeID:          profile.EmployeeID,
		PayPeriodID:         period.ID,
		BasicPay:            basicPay,
		AttendanceEarnings:  attendanceEarnings,
		OvertimePay:         overtimePay,
		GrossIncome:         gross,
		StatutoryDeductions: items,
		StatutoryTotal:      statutoryTotal,
		TaxableIncome:       taxable,
		WithholdingTax:      tax,
		TotalDeductions:     totalDeductions,
		NetSalary:           net,
		WorkedHours:         att.WorkedHours,
		LateHours:           att.LateHours,
		AbsentDays:          att.AbsentDays,
		OvertimeHours:       ot.Hours,
		RateTableVersion:    e.version,
		Anomalies:           anomalies,
	}, nil
}

// attendanceEarnings pays hourly staff for worked hours and charges salaried
// staff for late arrivals and absences against their basic pay
func (e *Engine) attendanceEarnings(profile payroll.CompensationProfile, att AttendanceSummary) decimal.Decimal {
	switch profile.Category {
	case payroll.PayCategoryHourly:
		return att.WorkedHours.Mul(profile.HourlyRate).Round(2)
	default:
		late := decimal.Zero
		if profile.LateDeductible {
			late = att.LateHours.Mul(profile.HourlyRate).Round(2)
		}
		absence := decimal.NewFromInt(int64(att.AbsentDays)).
			Mul(e.policy.StandardDailyHours).
			Mul(profile.HourlyRate).
			Round(2)
		return late.Add(absence).Neg()
	}
}
