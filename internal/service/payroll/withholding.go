package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// WithholdingCalculator applies a progressive bracket table
type WithholdingCalculator struct {
	brackets []payroll.TaxBracket
}

func NewWithholdingCalculator(brackets []payroll.TaxBracket) (*WithholdingCalculator, error) {
	if err := payroll.ValidateBrackets(brackets); err != nil {
		return nil, err
	}
	return &WithholdingCalculator{brackets: brackets}, nil
}

// Calculate finds the bracket [Lower, Upper) holding income and returns
// BaseTax + Rate × (income − Lower), rounded half-up. Income at or below the
// lowest bound is untaxed.
func (c *WithholdingCalculator) Calculate(income decimal.Decimal) decimal.Decimal {
	if len(c.brackets) == 0 || income.LessThanOrEqual(c.brackets[0].Lower) {
		return decimal.Zero
	}

	for _, b := range c.brackets {
		if income.LessThan(b.Lower) {
			break
		}
		if b.Upper == nil || income.LessThan(*b.Upper) {
			return b.BaseTax.Add(b.Rate.Mul(income.Sub(b.Lower))).Round(2)
		}
	}
	return decimal.Zero
}
