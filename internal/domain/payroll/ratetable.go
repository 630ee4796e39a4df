package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ContributionRate - One percentage-of-base statutory contribution
type ContributionRate struct {
	Code string
	Name string
	Rate decimal.Decimal
	// Ceiling caps the base the rate applies to. Nil means uncapped.
	Ceiling *decimal.Decimal
}

// TaxBracket - Half-open income range [Lower, Upper). Nil Upper is unbounded.
type TaxBracket struct {
	Lower   decimal.Decimal
	Upper   *decimal.Decimal
	BaseTax decimal.Decimal
	Rate    decimal.Decimal
}

// AttendancePolicy - Work-day rules used by the attendance aggregator
type AttendancePolicy struct {
	StandardStart      time.Duration // offset from midnight, e.g. 8h
	GraceCutoff        time.Duration // late only once time-in is after this offset
	LunchBreakMinutes  int
	StandardDailyHours decimal.Decimal
	WorkWeekdays       []time.Weekday
}

// IsWorkday reports whether d falls on a configured work weekday
func (p AttendancePolicy) IsWorkday(d time.Time) bool {
	for _, wd := range p.WorkWeekdays {
		if d.Weekday() == wd {
			return true
		}
	}
	return false
}

// DefaultAttendancePolicy is used when a rate table omits the attendance block
func DefaultAttendancePolicy() AttendancePolicy {
	return AttendancePolicy{
		StandardStart:      8 * time.Hour,
		GraceCutoff:        8*time.Hour + 15*time.Minute,
		LunchBreakMinutes:  60,
		StandardDailyHours: decimal.NewFromInt(8),
		WorkWeekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	}
}

// RateTable - One externally versioned set of statutory rates and tax brackets
type RateTable struct {
	Version       string
	EffectiveFrom time.Time
	Contributions []ContributionRate
	TaxBrackets   []TaxBracket
	Attendance    AttendancePolicy
}

// Validate checks rates are non-negative and brackets are ordered and contiguous
func (t RateTable) Validate() error {
	for _, c := range t.Contributions {
		if c.Code == "" {
			return fmt.Errorf("%w: contribution code is required", ErrInvalidRateTable)
		}
		if c.Rate.IsNegative() {
			return fmt.Errorf("%w: contribution %s has negative rate", ErrInvalidRateTable, c.Code)
		}
		if c.Ceiling != nil && c.Ceiling.IsNegative() {
			return fmt.Errorf("%w: contribution %s has negative ceiling", ErrInvalidRateTable, c.Code)
		}
	}
	return ValidateBrackets(t.TaxBrackets)
}

// ValidateBrackets requires contiguous ascending brackets ending in exactly one unbounded bracket
func ValidateBrackets(brackets []TaxBracket) error {
	if len(brackets) > 0 && brackets[len(brackets)-1].Upper != nil {
		return fmt.Errorf("%w: last bracket must be unbounded", ErrInvalidRateTable)
	}
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.BaseTax.IsNegative() || b.Lower.IsNegative() {
			return fmt.Errorf("%w: bracket %d has negative values", ErrInvalidRateTable, i)
		}
		if b.Upper == nil {
			if i != len(brackets)-1 {
				return fmt.Errorf("%w: only the last bracket may be unbounded", ErrInvalidRateTable)
			}
			continue
		}
		if !b.Upper.GreaterThan(b.Lower) {
			return fmt.Errorf("%w: bracket %d upper bound must exceed lower bound", ErrInvalidRateTable, i)
		}
		if i+1 < len(brackets) && !brackets[i+1].Lower.Equal(*b.Upper) {
			return fmt.Errorf("%w: bracket %d must start where bracket %d ends", ErrInvalidRateTable, i+1, i)
		}
	}
	return nil
}
