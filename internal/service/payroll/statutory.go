package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// StatutoryCalculator applies percentage-of-base contributions from a rate table
type StatutoryCalculator struct {
	rates []payroll.ContributionRate
}

func NewStatutoryCalculator(rates []payroll.ContributionRate) *StatutoryCalculator {
	return &StatutoryCalculator{rates: rates}
}

// Calculate returns one rounded item per contribution and their sum.
// A zero base gives zero items.
func (c *StatutoryCalculator) Calculate(base decimal.Decimal) ([]payroll.DeductionItem, decimal.Decimal) {
	items := make([]payroll.DeductionItem, 0, len(c.rates))
	total := decimal.Zero

	for _, r := range c.rates {
		capped := base
		if r.Ceiling != nil && capped.GreaterThan(*r.Ceiling) {
			capped = *r.Ceiling
		}
		amount := capped.Mul(r.Rate).Round(2)
		items = append(items, payroll.DeductionItem{
			Code:   r.Code,
			Name:   r.Name,
			Rate:   r.Rate,
			Base:   capped,
			Amount: amount,
		})
		total = total.Add(amount)
	}

	return items, total
}
