package position

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Position carries the pay policy shared by every employee holding it
type Position struct {
	ID                 string
	CompanyID          string
	Name               string
	PayCategory        payroll.PayCategory
	OvertimeMultiplier decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AllowsOvertime is false for positions configured without a multiplier
func (p Position) AllowsOvertime() bool {
	return p.OvertimeMultiplier.IsPositive()
}

func (p Position) Validate() error {
	if !p.PayCategory.IsValid() || p.OvertimeMultiplier.IsNegative() {
		return ErrInvalidPayPolicy
	}
	return nil
}
