package calculation

import (
	"fmt"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// PortfolioState is the mutable state carried from one year to the next.
type PortfolioState struct {
	Balance decimal.Decimal
	// Failed is sticky: once a withdrawal could not be met it stays set.
	Failed bool
}

// YearSimulator advances the household portfolio by one year.
type YearSimulator struct {
	profile *domain.Profile
	income  IncomeModel
	taxes   *TaxEngine
	returns ReturnModel
}

// NewYearSimulator creates a simulator for one trajectory.
func NewYearSimulator(profile *domain.Profile, taxes *TaxEngine, returns ReturnModel) *YearSimulator {
	return &YearSimulator{profile: profile, taxes: taxes, returns: returns}
}

// Step simulates the year starting at date and updates state in place.
//
// Before the primary retiree retires, contributions are deposited and nothing
// is withdrawn. Afterwards, non-portfolio income covers expenses first; any
// surplus is deposited and any shortfall is withdrawn grossed up for tax.
// The balance then grows by the allocation-weighted return.
func (ys *YearSimulator) Step(state *PortfolioState, yc YearContext, date time.Time) (domain.YearRecord, error) {
	household := ys.profile.Household()
	ages := make([]int, len(household))
	for i := range household {
		ages[i] = household[i].Age(date)
	}
	primary := household.Primary()
	retired := primary.IsRetired(ages[0])
	yc.Retired = retired

	flows := ys.income.Household(ages, household)
	rec := domain.YearRecord{
		Year:         yc.Year,
		Age:          ages[0],
		Retired:      retired,
		Contribution: flows.Contribution,
		Expenses:     decimal.Zero,
		Income:       decimal.Zero,
		Withdrawal:   decimal.Zero,
		Tax:          decimal.Zero,
		MarginalRate: decimal.Zero,
		DrawRate:     decimal.Zero,
	}

	balance := state.Balance.Add(flows.Contribution)

	if retired {
		expenses := ys.profile.Expenses.Annual()
		income := flows.NonPortfolio()
		rec.Expenses = expenses
		rec.Income = income

		shortfall := expenses.Sub(income)
		if shortfall.IsNegative() {
			balance = balance.Add(shortfall.Neg())
			shortfall = decimal.Zero
		}

		solved, err := ys.taxes.GrossUp(shortfall, flows.Taxable())
		if err != nil {
			return rec, fmt.Errorf("year %d: %w", yc.Year, err)
		}
		rec.Withdrawal = solved.Withdrawal.Round(moneyPlaces)
		rec.Tax = solved.Tax
		rec.MarginalRate = solved.MarginalRate

		if balance.IsPositive() {
			rec.DrawRate = rec.Withdrawal.Div(balance)
		}
		if rec.Withdrawal.GreaterThan(balance) {
			balance = decimal.Zero
			state.Failed = true
		} else {
			balance = balance.Sub(rec.Withdrawal)
		}
	}

	classReturns, err := ys.returns.Returns(yc)
	if err != nil {
		return rec, err
	}
	if src, ok := ys.returns.(marketYearSource); ok {
		rec.MarketYear = src.MarketYear(yc)
	}
	rate := classReturns.Blend(ys.profile.Portfolio.AllocationFor(retired))
	rec.Yield = rate

	balance = balance.Mul(decimal.NewFromInt(1).Add(rate)).Round(moneyPlaces)
	if !balance.IsPositive() {
		balance = decimal.Zero
		state.Failed = true
	}

	state.Balance = balance
	rec.Balance = balance
	rec.Failed = state.Failed
	return rec, nil
}
