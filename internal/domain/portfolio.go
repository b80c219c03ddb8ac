package domain

import (
	"github.com/shopspring/decimal"
)

// AssetClass names one of the three modeled asset classes.
type AssetClass string

const (
	USEquities    AssetClass = "us_equities"
	International AssetClass = "international"
	Bonds         AssetClass = "bonds"
)

// AssetClasses lists the modeled classes in reporting order.
var AssetClasses = []AssetClass{USEquities, International, Bonds}

// Allocation is a portfolio mix in percent (0-100) across asset classes.
type Allocation struct {
	USEquities    decimal.Decimal `yaml:"us_equities" json:"us_equities"`
	International decimal.Decimal `yaml:"international" json:"international"`
	Bonds         decimal.Decimal `yaml:"bonds" json:"bonds"`
}

// Total returns the sum of the allocation percentages.
func (a Allocation) Total() decimal.Decimal {
	return a.USEquities.Add(a.International).Add(a.Bonds)
}

// AssetClassReturns holds one percentage value per asset class, used both for
// annual returns and for their standard deviations.
type AssetClassReturns struct {
	USEquities    decimal.Decimal `yaml:"us_equities" json:"us_equities"`
	International decimal.Decimal `yaml:"international" json:"international"`
	Bonds         decimal.Decimal `yaml:"bonds" json:"bonds"`
}

// Get returns the value for a single asset class.
func (r AssetClassReturns) Get(class AssetClass) decimal.Decimal {
	switch class {
	case USEquities:
		return r.USEquities
	case International:
		return r.International
	case Bonds:
		return r.Bonds
	}
	return decimal.Zero
}

// Blend returns the allocation-weighted return as a fraction (7% -> 0.07).
func (r AssetClassReturns) Blend(mix Allocation) decimal.Decimal {
	sum := mix.USEquities.Mul(r.USEquities).
		Add(mix.International.Mul(r.International)).
		Add(mix.Bonds.Mul(r.Bonds))
	return sum.Shift(-4)
}

// Portfolio is the single pooled investment account of the household.
type Portfolio struct {
	Balance decimal.Decimal `yaml:"balance" json:"balance"`

	PreRetirementAllocation  Allocation `yaml:"pre-retirement_allocation" json:"pre_retirement_allocation"`
	PostRetirementAllocation Allocation `yaml:"post-retirement_allocation" json:"post_retirement_allocation"`

	USEquityExpectedReturn      decimal.Decimal `yaml:"us_equity_expected_returns" json:"us_equity_expected_returns"`
	USEquityStdDev              decimal.Decimal `yaml:"us_equity_standard_deviation" json:"us_equity_standard_deviation"`
	InternationalExpectedReturn decimal.Decimal `yaml:"international_equity_expected_returns" json:"international_equity_expected_returns"`
	InternationalStdDev         decimal.Decimal `yaml:"international_equity_standard_deviation" json:"international_equity_standard_deviation"`
	BondsExpectedReturn         decimal.Decimal `yaml:"bonds_expected_returns" json:"bonds_expected_returns"`
	BondsStdDev                 decimal.Decimal `yaml:"bonds_standard_deviation" json:"bonds_standard_deviation"`

	// ExpectedInflation is recorded for reporting; amounts are already in today's dollars.
	ExpectedInflation decimal.Decimal `yaml:"expected_inflation" json:"expected_inflation"`
}

// ExpectedReturns returns the configured mean annual returns per class.
func (p Portfolio) ExpectedReturns() AssetClassReturns {
	return AssetClassReturns{
		USEquities:    p.USEquityExpectedReturn,
		International: p.InternationalExpectedReturn,
		Bonds:         p.BondsExpectedReturn,
	}
}

// StandardDeviations returns the configured return volatility per class.
func (p Portfolio) StandardDeviations() AssetClassReturns {
	return AssetClassReturns{
		USEquities:    p.USEquityStdDev,
		International: p.InternationalStdDev,
		Bonds:         p.BondsStdDev,
	}
}

// AllocationFor picks the pre- or post-retirement mix.
func (p Portfolio) AllocationFor(retired bool) Allocation {
	if retired {
		return p.PostRetirementAllocation
	}
	return p.PreRetirementAllocation
}
