package calculation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

const maxRetirees = 2

var allocationTolerance = decimal.RequireFromString("0.01")

// ValidateProfile checks a profile against the simulation start date and
// returns every problem found, wrapped in ErrConfigInvalid.
func ValidateProfile(p *domain.Profile, start time.Time) error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrConfigInvalid)
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(p.Retirees) == 0 {
		add("at least one retiree is required")
	}
	if len(p.Retirees) > maxRetirees {
		add("at most %d retirees are supported, got %d", maxRetirees, len(p.Retirees))
	}
	for i := range p.Retirees {
		r := &p.Retirees[i]
		label := fmt.Sprintf("retiree %d (%s)", i+1, r.Name)
		if strings.TrimSpace(r.Name) == "" {
			add("retiree %d: name is required", i+1)
		}
		if r.BirthDate.IsZero() || !r.BirthDate.Before(start) {
			add("%s: date_of_birth must be before %s", label, start.Format("2006-01-02"))
		}
		if r.RetirementAge <= 0 {
			add("%s: retirement_age must be positive", label)
		}
		if age := r.Age(start); r.LifeExpectancy <= age {
			add("%s: life_expectancy %d must exceed current age %d", label, r.LifeExpectancy, age)
		}
		if r.PensionAge < 0 {
			add("%s: pension_age cannot be negative", label)
		}
		if !inRange(r.ContributionPercent, decimal.Zero, hundred) {
			add("%s: retirement_contribution_percent must be between 0 and 100", label)
		}
		for _, f := range []namedAmount{
			{"wage_annual_salary", r.AnnualSalary},
			{"social_security_age", r.SocialSecurityAge},
			{"social_security_amount_early", r.SocialSecurityEarly},
			{"social_security_amount_full", r.SocialSecurityFull},
			{"social_security_amount_delayed", r.SocialSecurityDelayed},
			{"pension_monthly_income", r.PensionMonthly},
			{"other_monthly_retirement_income", r.OtherMonthlyIncome},
		} {
			if f.value.IsNegative() {
				add("%s: %s cannot be negative", label, f.name)
			}
		}
	}
	pf := p.Portfolio
	if pf.Balance.IsNegative() {
		add("portfolio balance cannot be negative")
	}
	for _, a := range []struct {
		name string
		mix  domain.Allocation
	}{
		{"pre-retirement_allocation", pf.PreRetirementAllocation},
		{"post-retirement_allocation", pf.PostRetirementAllocation},
	} {
		name, mix := a.name, a.mix
		if mix.USEquities.IsNegative() || mix.International.IsNegative() || mix.Bonds.IsNegative() {
			add("%s: percentages cannot be negative", name)
		}
		if mix.Total().Sub(hundred).Abs().GreaterThan(allocationTolerance) {
			add("%s: percentages must sum to 100, got %s", name, mix.Total().String())
		}
	}
	sd := pf.StandardDeviations()
	for _, class := range domain.AssetClasses {
		if sd.Get(class).IsNegative() {
			add("%s standard deviation cannot be negative", class)
		}
	}

	if p.Expenses.Monthly.IsNegative() {
		add("monthly expenses cannot be negative")
	}

	tax := p.TaxRates
	if tax.StandardDeduction.IsNegative() {
		add("standard_deduction cannot be negative")
	}
	for i, b := range tax.Brackets {
		if b.Threshold.IsNegative() {
			add("tax level %d: income cannot be negative", i+1)
		}
		if !inRange(b.Rate, decimal.Zero, hundred) || b.Rate.Equal(hundred) {
			add("tax level %d: rate must be at least 0 and below 100", i+1)
		}
		if i > 0 && !b.Threshold.GreaterThan(tax.Brackets[i-1].Threshold) {
			add("tax level %d: income thresholds must be strictly ascending", i+1)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}

type namedAmount struct {
	name  string
	value decimal.Decimal
}

func inRange(v, lo, hi decimal.Decimal) bool {
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}
