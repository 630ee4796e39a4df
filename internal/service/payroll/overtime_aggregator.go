package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// OvertimeSummary - Approved overtime of one employee over one period
type OvertimeSummary struct {
	Hours     decimal.Decimal
	Intervals int
	Anomalies []payroll.Anomaly
}

// AggregateOvertime sums approved intervals starting inside the period.
// Each interval is rounded to 2 decimals before it is added.
func AggregateOvertime(intervals []payroll.OvertimeInterval, period payroll.PayPeriod) OvertimeSummary {
	s := OvertimeSummary{Hours: decimal.Zero}

	for _, iv := range intervals {
		if iv.Status != payroll.OvertimeStatusApproved || !period.Contains(iv.Start) {
			continue
		}
		if iv.End.Before(iv.Start) {
			s.Anomalies = append(s.Anomalies, anomalyOn(payroll.AnomalyMalformedOvertime, payroll.DateOf(iv.Start),
				fmt.Sprintf("overtime %s ends before it starts", iv.ID)))
			continue
		}
		s.Hours = s.Hours.Add(minutesToHours(int(iv.End.Sub(iv.Start) / time.Minute)))
		s.Intervals++
	}

	return s
}

// OvertimePay = hours × hourly rate × multiplier, rounded half-up
func OvertimePay(hours, hourlyRate, multiplier decimal.Decimal) decimal.Decimal {
	return hours.Mul(hourlyRate).Mul(multiplier).Round(2)
}
