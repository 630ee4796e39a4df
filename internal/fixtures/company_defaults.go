package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==========================================
// SEEDED DATA RESULT
// ==========================================

// SeededDataIDs holds IDs of all seeded default data for a company
type SeededDataIDs struct {
	// Position IDs by name
	PositionIDs map[string]string // e.g., "Staff" -> "uuid"

	// Pay period IDs by label
	PayPeriodIDs map[string]string // e.g., "2025-07-A" -> "uuid"
}

func NewSeededDataIDs() *SeededDataIDs {
	return &SeededDataIDs{
		PositionIDs:  make(map[string]string),
		PayPeriodIDs: make(map[string]string),
	}
}

// Seeder is the write side needed to install company defaults
type Seeder interface {
	SavePosition(ctx context.Context, p position.Position) error
	SavePayPeriod(ctx context.Context, p payroll.PayPeriod) error
}

// ==========================================
// DEFAULT POSITIONS
// ==========================================

// GetDefaultPositions returns standard job positions with their pay policy
func GetDefaultPositions(companyID string) []position.Position {
	regular := decimal.RequireFromString("1.25")
	return []position.Position{
		{CompanyID: companyID, Name: "Director", PayCategory: payroll.PayCategorySalaried, OvertimeMultiplier: decimal.Zero},
		{CompanyID: companyID, Name: "Manager", PayCategory: payroll.PayCategorySalaried, OvertimeMultiplier: decimal.Zero},
		{CompanyID: companyID, Name: "Supervisor", PayCategory: payroll.PayCategorySalaried, OvertimeMultiplier: regular},
		{CompanyID: companyID, Name: "Staff", PayCategory: payroll.PayCategorySalaried, OvertimeMultiplier: regular},
		{CompanyID: companyID, Name: "Hourly Associate", PayCategory: payroll.PayCategoryHourly, OvertimeMultiplier: regular},
		// Interns are paid for hours worked only
		{CompanyID: companyID, Name: "Intern", PayCategory: payroll.PayCategoryHourly, OvertimeMultiplier: decimal.Zero},
	}
}

// ==========================================
// DEFAULT PAY PERIODS
// ==========================================

// GetSemiMonthlyPeriods returns the two pay periods of a month:
// day 1 to 15 (label suffix A) and day 16 to month end (suffix B)
func GetSemiMonthlyPeriods(companyID string, year int, month time.Month) []payroll.PayPeriod {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	prefix := first.Format("2006-01")

	return []payroll.PayPeriod{
		{
			CompanyID: companyID,
			Label:     prefix + "-A",
			StartDate: first,
			EndDate:   time.Date(year, month, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			CompanyID: companyID,
			Label:     prefix + "-B",
			StartDate: time.Date(year, month, 16, 0, 0, 0, 0, time.UTC),
			EndDate:   last,
		},
	}
}

// SeedCompanyDefaults installs default positions and the pay periods of the
// given months for one company
func SeedCompanyDefaults(ctx context.Context, seeder Seeder, companyID string, months ...time.Time) (*SeededDataIDs, error) {
	ids := NewSeededDataIDs()

	for _, p := range GetDefaultPositions(companyID) {
		p.ID = uuid.NewString()
		if err := seeder.SavePosition(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to seed position %s: %w", p.Name, err)
		}
		ids.PositionIDs[p.Name] = p.ID
	}

	for _, m := range months {
		for _, period := range GetSemiMonthlyPeriods(companyID, m.Year(), m.Month()) {
			period.ID = uuid.NewString()
			if err := seeder.SavePayPeriod(ctx, period); err != nil {
				return nil, fmt.Errorf("failed to seed pay period %s: %w", period.Label, err)
			}
			ids.PayPeriodIDs[period.Label] = period.ID
		}
	}

	return ids, nil
}
