package calculation

import (
	"github.com/rpgo/retirement-simulator/internal/domain"
	money "github.com/rpgo/retirement-simulator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// Social Security claiming anchors.
var (
	ssEarlyAge   = decimal.NewFromInt(62)
	ssFullAge    = decimal.NewFromInt(67)
	ssDelayedAge = decimal.NewFromInt(70)

	// ssTaxableShare is the portion of benefits counted as taxable income.
	ssTaxableShare = decimal.RequireFromString("0.85")

	hundred = decimal.NewFromInt(100)
)

// IncomeBreakdown is one retiree's cash flows for a single year.
type IncomeBreakdown struct {
	Contribution   decimal.Decimal
	SocialSecurity decimal.Decimal
	Pension        decimal.Decimal
	Other          decimal.Decimal
}

// NonPortfolio is income that arrives without touching the portfolio.
func (b IncomeBreakdown) NonPortfolio() decimal.Decimal {
	return b.SocialSecurity.Add(b.Pension).Add(b.Other)
}

// Taxable is the ordinary taxable portion of the non-portfolio income.
func (b IncomeBreakdown) Taxable() decimal.Decimal {
	return b.SocialSecurity.Mul(ssTaxableShare).Add(b.Pension).Add(b.Other)
}

// Add sums two breakdowns.
func (b IncomeBreakdown) Add(o IncomeBreakdown) IncomeBreakdown {
	return IncomeBreakdown{
		Contribution:   b.Contribution.Add(o.Contribution),
		SocialSecurity: b.SocialSecurity.Add(o.SocialSecurity),
		Pension:        b.Pension.Add(o.Pension),
		Other:          b.Other.Add(o.Other),
	}
}

// IncomeModel derives annual income streams from a retiree's age.
type IncomeModel struct{}

// Annual computes a retiree's income for the year in which they are age.
// Contributions stop at the retiree's own retirement age; the other streams
// start at their respective ages.
func (IncomeModel) Annual(age int, r *domain.Retiree) IncomeBreakdown {
	var b IncomeBreakdown
	ageDec := decimal.NewFromInt(int64(age))

	if !r.IsRetired(age) {
		b.Contribution = r.AnnualSalary.Mul(r.ContributionPercent).Div(hundred)
	}

	if ageDec.GreaterThanOrEqual(r.SocialSecurityAge) {
		monthly := SocialSecurityMonthly(r.SocialSecurityAge, r.SocialSecurityEarly, r.SocialSecurityFull, r.SocialSecurityDelayed)
		b.SocialSecurity = annualize(monthly)
	}

	if r.PensionAge > 0 && age >= r.PensionAge {
		b.Pension = annualize(r.PensionMonthly)
	}

	if r.IsRetired(age) {
		b.Other = annualize(r.OtherMonthlyIncome)
	}

	return b
}

// Household sums the breakdowns of every retiree at their own age.
func (m IncomeModel) Household(ages []int, h domain.Household) IncomeBreakdown {
	var total IncomeBreakdown
	for i := range h {
		total = total.Add(m.Annual(ages[i], &h[i]))
	}
	return total
}

// SocialSecurityMonthly interpolates the monthly benefit for a claiming age.
// The curve is linear between 62 (early), 67 (full) and 70 (delayed) and
// flat outside that range.
func SocialSecurityMonthly(claimAge, early, full, delayed decimal.Decimal) decimal.Decimal {
	switch {
	case claimAge.LessThanOrEqual(ssEarlyAge):
		return early
	case claimAge.GreaterThanOrEqual(ssDelayedAge):
		return delayed
	case claimAge.LessThanOrEqual(ssFullAge):
		return lerp(early, full, claimAge.Sub(ssEarlyAge).Div(ssFullAge.Sub(ssEarlyAge)))
	default:
		return lerp(full, delayed, claimAge.Sub(ssFullAge).Div(ssDelayedAge.Sub(ssFullAge)))
	}
}

func lerp(from, to, frac decimal.Decimal) decimal.Decimal {
	return from.Add(to.Sub(from).Mul(frac))
}

func annualize(monthly decimal.Decimal) decimal.Decimal {
	return money.NewMoneyFromDecimal(monthly).Annual().Decimal
}
