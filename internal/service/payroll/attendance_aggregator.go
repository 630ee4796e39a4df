package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// AttendanceSummary - Aggregated attendance of one employee over one period
type AttendanceSummary struct {
	WorkedMinutes int
	LateMinutes   int
	WorkedHours   decimal.Decimal
	LateHours     decimal.Decimal
	PresentDays   int
	AbsentDays    int
	Anomalies     []payroll.Anomaly
}

// AggregateAttendance folds daily punches into worked, late and absent totals.
// Days outside the period are ignored. A work day with no row, or a row missing
// either punch, is an absence.
func AggregateAttendance(days []payroll.AttendanceDay, period payroll.PayPeriod, policy payroll.AttendancePolicy) AttendanceSummary {
	var s AttendanceSummary

	byDate := make(map[time.Time]payroll.AttendanceDay, len(days))
	for _, day := range days {
		if !period.Contains(day.Date) {
			continue
		}
		key := payroll.DateOf(day.Date)
		if _, seen := byDate[key]; seen {
			s.Anomalies = append(s.Anomalies, anomalyOn(payroll.AnomalyMalformedAttendance, key, "duplicate attendance row ignored"))
			continue
		}
		byDate[key] = day
	}

	start := payroll.DateOf(period.StartDate)
	end := payroll.DateOf(period.EndDate)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day, ok := byDate[d]
		complete := ok && day.TimeIn != nil && day.TimeOut != nil

		if !complete {
			if policy.IsWorkday(d) {
				s.AbsentDays++
			}
			continue
		}

		s.PresentDays++
		worked, malformed := workedMinutes(*day.TimeIn, *day.TimeOut, policy.LunchBreakMinutes)
		if malformed {
			s.Anomalies = append(s.Anomalies, anomalyOn(payroll.AnomalyMalformedAttendance, d,
				fmt.Sprintf("time out %s is before time in %s", day.TimeOut.Format(time.RFC3339), day.TimeIn.Format(time.RFC3339))))
		}
		s.WorkedMinutes += worked
		s.LateMinutes += lateMinutes(*day.TimeIn, policy)
	}

	s.WorkedHours = minutesToHours(s.WorkedMinutes)
	s.LateHours = minutesToHours(s.LateMinutes)
	return s
}

// workedMinutes subtracts the lunch break and clamps at zero
func workedMinutes(in, out time.Time, lunchMinutes int) (int, bool) {
	if out.Before(in) {
		return 0, true
	}
	m := int(out.Sub(in)/time.Minute) - lunchMinutes
	if m < 0 {
		return 0, false
	}
	return m, false
}

// lateMinutes counts from the standard start, but only once time in passes the grace cutoff
func lateMinutes(in time.Time, policy payroll.AttendancePolicy) int {
	if !in.After(wallClockOn(in, policy.GraceCutoff)) {
		return 0
	}
	late := int(in.Sub(wallClockOn(in, policy.StandardStart)) / time.Minute)
	if late < 0 {
		return 0
	}
	return late
}

// wallClockOn returns the local clock time offset from midnight on the day of t.
// Built from clock fields so DST transitions do not shift it.
func wallClockOn(t time.Time, offset time.Duration) time.Time {
	y, m, d := t.Date()
	h := int(offset / time.Hour)
	mi := int(offset % time.Hour / time.Minute)
	sec := int(offset % time.Minute / time.Second)
	return time.Date(y, m, d, h, mi, sec, 0, t.Location())
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

func anomalyOn(t payroll.AnomalyType, date time.Time, msg string) payroll.Anomaly {
	d := date
	return payroll.Anomaly{Type: t, Date: &d, Message: msg}
}
