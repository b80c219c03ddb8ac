package calculation

import (
	"testing"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepOnce(t *testing.T, p *domain.Profile, state *PortfolioState) domain.YearRecord {
	t.Helper()
	ys := NewYearSimulator(p, NewTaxEngine(p.TaxRates), UniformReturns{Expected: p.Portfolio.ExpectedReturns()})
	rec, err := ys.Step(state, YearContext{Index: 0, Year: testStart.Year()}, testStart)
	require.NoError(t, err)
	return rec
}

func TestYearSimulator_RetiredWithdrawal(t *testing.T) {
	p := retiredProfile()
	state := &PortfolioState{Balance: p.Portfolio.Balance}

	rec := stepOnce(t, p, state)

	assert.True(t, rec.Retired)
	assert.Equal(t, 60, rec.Age)
	assert.Equal(t, 2025, rec.Year)
	assertDecimal(t, "12000", rec.Expenses)
	assertDecimal(t, "12000", rec.Withdrawal)
	assertDecimal(t, "0", rec.Tax)
	assertDecimal(t, "0.12", rec.DrawRate)
	assertDecimal(t, "0.1", rec.Yield)
	assertDecimal(t, "96800", rec.Balance)
	assert.False(t, state.Failed)
	assertDecimal(t, "96800", state.Balance)
}

func TestYearSimulator_WithdrawalGrossedUpForTax(t *testing.T) {
	p := retiredProfile()
	p.TaxRates = domain.TaxTable{Brackets: []domain.TaxBracket{{Threshold: dec("0"), Rate: dec("10")}}}
	state := &PortfolioState{Balance: p.Portfolio.Balance}

	rec := stepOnce(t, p, state)

	// W = 12000 + 0.1W
	assertDecimalNear(t, "13333.33", rec.Withdrawal, "0.01")
	assertDecimalNear(t, "1333.33", rec.Tax, "0.01")
	assertDecimal(t, "0.1", rec.MarginalRate)
	assertDecimalNear(t, "95333.33", rec.Balance, "0.02")
}

func TestYearSimulator_PreRetirementContributes(t *testing.T) {
	p := retiredProfile()
	p.Retirees[0].RetirementAge = 65
	p.Retirees[0].AnnualSalary = dec("80000")
	p.Retirees[0].ContributionPercent = dec("15")
	p.Portfolio.PreRetirementAllocation = domain.Allocation{Bonds: dec("100")}
	state := &PortfolioState{Balance: p.Portfolio.Balance}

	rec := stepOnce(t, p, state)

	assert.False(t, rec.Retired)
	assertDecimal(t, "12000", rec.Contribution)
	assertDecimal(t, "0", rec.Expenses, "no expenses tracked while working")
	assertDecimal(t, "0", rec.Withdrawal)
	assertDecimal(t, "0", rec.Tax)
	assertDecimal(t, "0.03", rec.Yield, "pre-retirement mix is used")
	assertDecimal(t, "115360", rec.Balance)
}

func TestYearSimulator_SurplusIsDeposited(t *testing.T) {
	p := retiredProfile()
	p.Retirees[0].OtherMonthlyIncome = dec("2000")
	p.Portfolio.USEquityExpectedReturn = decimal.Zero
	state := &PortfolioState{Balance: p.Portfolio.Balance}

	rec := stepOnce(t, p, state)

	assertDecimal(t, "24000", rec.Income)
	assertDecimal(t, "0", rec.Withdrawal)
	assertDecimal(t, "112000", rec.Balance)
}

func TestYearSimulator_ClampAndStickyFailure(t *testing.T) {
	p := retiredProfile()
	p.Portfolio.Balance = dec("10000")
	p.Portfolio.USEquityExpectedReturn = decimal.Zero
	p.Retirees[0].LifeExpectancy = 63
	ys := NewYearSimulator(p, NewTaxEngine(p.TaxRates), UniformReturns{Expected: p.Portfolio.ExpectedReturns()})
	state := &PortfolioState{Balance: p.Portfolio.Balance}

	first, err := ys.Step(state, YearContext{Index: 0, Year: 2025}, testStart)
	require.NoError(t, err)
	assertDecimal(t, "0", first.Balance, "balance is never negative")
	assert.True(t, first.Failed)

	// even a later windfall does not clear the failure
	p.Retirees[0].OtherMonthlyIncome = dec("5000")
	second, err := ys.Step(state, YearContext{Index: 1, Year: 2026}, testStart.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, second.Balance.IsPositive())
	assert.True(t, second.Failed)
}

func TestYearSimulator_SpouseStillWorking(t *testing.T) {
	p := retiredProfile()
	p.Portfolio.USEquityExpectedReturn = decimal.Zero
	p.Retirees = append(p.Retirees, domain.Retiree{
		Name:                "Sam",
		BirthDate:           time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		RetirementAge:       62,
		LifeExpectancy:      90,
		AnnualSalary:        dec("60000"),
		ContributionPercent: dec("10"),
		SocialSecurityAge:   dec("67"),
	})
	state := &PortfolioState{Balance: p.Portfolio.Balance}

	rec := stepOnce(t, p, state)

	assert.True(t, rec.Retired, "the primary retiree sets the phase")
	assertDecimal(t, "6000", rec.Contribution)
	assertDecimal(t, "12000", rec.Withdrawal)
	// 100000 + 6000 contribution - 12000 withdrawal
	assertDecimal(t, "94000", rec.Balance)
	assertDecimal(t, "0.1132075471698113", rec.DrawRate)
}
