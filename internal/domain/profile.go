package domain

import (
	"github.com/shopspring/decimal"
)

// Expenses are the household's spending needs in today's dollars.
type Expenses struct {
	Monthly decimal.Decimal `yaml:"monthly" json:"monthly"`
}

// Annual returns twelve months of expenses.
func (e Expenses) Annual() decimal.Decimal {
	return e.Monthly.Mul(decimal.NewFromInt(12))
}

// TaxBracket is one level of a progressive schedule. Threshold is the lower
// bound of taxable income where Rate (percent) starts to apply.
type TaxBracket struct {
	Threshold decimal.Decimal `yaml:"income" json:"income"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
}

// TaxTable is a standard deduction plus ascending brackets.
type TaxTable struct {
	StandardDeduction decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction"`
	Brackets          []TaxBracket    `yaml:"levels" json:"levels"`
}

// Profile is the complete simulation input for one household.
type Profile struct {
	Retirees  []Retiree `yaml:"retirees" json:"retirees"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Expenses  Expenses  `yaml:"expenses" json:"expenses"`
	TaxRates  TaxTable  `yaml:"tax_rates" json:"tax_rates"`
}

// Household returns the retirees as a Household.
func (p *Profile) Household() Household {
	return Household(p.Retirees)
}

// Name labels the profile by its primary retiree.
func (p *Profile) Name() string {
	if primary := p.Household().Primary(); primary != nil {
		return primary.Name
	}
	return ""
}
