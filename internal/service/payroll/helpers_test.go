package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// July 2025: the 1st is a Tuesday, so 1–15 holds 11 weekdays.
var firstHalfJuly = payroll.PayPeriod{
	ID:        "period-2025-07-a",
	CompanyID: "company-1",
	Label:     "2025-07 A",
	StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	EndDate:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
}

const julyWorkdays = 11

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func julyAt(day, hour, minute int) *time.Time {
	t := time.Date(2025, 7, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func julyDay(day int, in, out *time.Time) payroll.AttendanceDay {
	return payroll.AttendanceDay{Date: time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC), TimeIn: in, TimeOut: out}
}

// fullAttendance punches 08:00–17:00 on every work day of the period
func fullAttendance(period payroll.PayPeriod, policy payroll.AttendancePolicy) []payroll.AttendanceDay {
	var days []payroll.AttendanceDay
	for t := period.StartDate; !t.After(period.EndDate); t = t.AddDate(0, 0, 1) {
		if !policy.IsWorkday(t) {
			continue
		}
		in := t.Add(8 * time.Hour)
		out := t.Add(17 * time.Hour)
		days = append(days, payroll.AttendanceDay{Date: t, TimeIn: &in, TimeOut: &out})
	}
	return days
}

func testRateTable() payroll.RateTable {
	return payroll.RateTable{
		Version:       "test-1",
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Contributions: []payroll.ContributionRate{
			{Code: "sss", Name: "Social Security", Rate: d("0.045")},
			{Code: "health", Name: "Health Insurance", Rate: d("0.0275")},
			{Code: "housing", Name: "Housing Fund", Rate: d("0.02")},
		},
		TaxBrackets: []payroll.TaxBracket{
			{Lower: d("0"), Upper: dp("10000"), BaseTax: d("0"), Rate: d("0")},
			{Lower: d("10000"), Upper: dp("20000"), BaseTax: d("500"), Rate: d("0.10")},
			{Lower: d("20000"), BaseTax: d("2000"), Rate: d("0.20")},
		},
		Attendance: payroll.DefaultAttendancePolicy(),
	}
}

func salariedProfile(monthly, hourly string) payroll.CompensationProfile {
	return payroll.CompensationProfile{
		EmployeeID:         "emp-1",
		BasicMonthlySalary: d(monthly),
		HourlyRate:         d(hourly),
		Category:           payroll.PayCategorySalaried,
		OvertimeMultiplier: d("1.25"),
	}
}

func hourlyProfile(rate string) payroll.CompensationProfile {
	return payroll.CompensationProfile{
		EmployeeID:         "emp-2",
		BasicMonthlySalary: decimal.Zero,
		HourlyRate:         d(rate),
		OvertimeEligible:   true,
		Category:           payroll.PayCategoryHourly,
		OvertimeMultiplier: d("1.25"),
	}
}
