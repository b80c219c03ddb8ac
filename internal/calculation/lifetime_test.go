package calculation

import (
	"errors"
	"testing"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runUniformLifetime(t *testing.T, p *domain.Profile) domain.Trajectory {
	t.Helper()
	ls := &LifetimeSimulator{Profile: p, Taxes: NewTaxEngine(p.TaxRates), Start: testStart}
	traj, err := ls.Run(UniformReturns{Expected: p.Portfolio.ExpectedReturns()}, domain.Provenance{Mode: domain.ModeUniform})
	require.NoError(t, err)
	return traj
}

func TestLifetimeSimulator_Run(t *testing.T) {
	traj := runUniformLifetime(t, retiredProfile())

	require.Len(t, traj.Records, 2)
	assert.Equal(t, []int{2025, 2026}, []int{traj.Records[0].Year, traj.Records[1].Year})
	assert.Equal(t, []int{60, 61}, []int{traj.Records[0].Age, traj.Records[1].Age})
	assertDecimal(t, "96800", traj.Records[0].Balance)
	// (96800 - 12000) * 1.1
	assertDecimal(t, "93280", traj.Records[1].Balance)
	assertDecimal(t, "93280", traj.TerminalBalance)
	assertDecimal(t, "0.1", traj.AverageYield)
	assert.True(t, traj.Success)
	assert.Equal(t, 2, traj.YearsSurvived)
	assert.Equal(t, domain.ModeUniform, traj.Provenance.Mode)
}

func TestLifetimeSimulator_AccumulationThenRetirement(t *testing.T) {
	p := retiredProfile()
	p.Retirees[0].BirthDate = time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC)
	p.Retirees[0].RetirementAge = 52
	p.Retirees[0].LifeExpectancy = 53
	p.Retirees[0].AnnualSalary = dec("100000")
	p.Retirees[0].ContributionPercent = dec("10")
	p.Portfolio.USEquityExpectedReturn = dec("0")

	traj := runUniformLifetime(t, p)

	require.Len(t, traj.Records, 3)
	balances := []string{"110000", "120000", "108000"}
	for i, want := range balances {
		assertDecimal(t, want, traj.Records[i].Balance, "year", i)
	}
	assert.False(t, traj.Records[1].Retired)
	assert.True(t, traj.Records[2].Retired)
	assertDecimal(t, "0", traj.Records[2].Contribution)
}

func TestLifetimeSimulator_DepletedPortfolioFails(t *testing.T) {
	p := retiredProfile()
	p.Portfolio.Balance = dec("15000")
	p.Portfolio.USEquityExpectedReturn = dec("0")
	p.Retirees[0].LifeExpectancy = 64

	traj := runUniformLifetime(t, p)

	require.Len(t, traj.Records, 4)
	assert.False(t, traj.Success)
	assert.Equal(t, 1, traj.YearsSurvived)
	assertDecimal(t, "3000", traj.Records[0].Balance)
	for _, r := range traj.Records[1:] {
		assert.True(t, r.Failed)
		assert.True(t, r.Balance.IsZero())
	}
}

func TestLifetimeSimulator_TimelineUsesLongestLife(t *testing.T) {
	p := retiredProfile()
	p.Retirees = append(p.Retirees, domain.Retiree{
		Name:              "Robin",
		BirthDate:         time.Date(1968, 6, 1, 0, 0, 0, 0, time.UTC),
		RetirementAge:     60,
		LifeExpectancy:    62,
		SocialSecurityAge: dec("67"),
	})

	// Robin is 56 at the start: 62 - 56 = 6 years
	traj := runUniformLifetime(t, p)
	assert.Len(t, traj.Records, 6)
}

func TestLifetimeSimulator_NothingToSimulate(t *testing.T) {
	p := retiredProfile()
	p.Retirees[0].LifeExpectancy = 59

	ls := &LifetimeSimulator{Profile: p, Taxes: NewTaxEngine(p.TaxRates), Start: testStart}
	_, err := ls.Run(UniformReturns{}, domain.Provenance{})
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestIsSuccessful(t *testing.T) {
	records := func(balances ...string) []domain.YearRecord {
		out := make([]domain.YearRecord, len(balances))
		for i, b := range balances {
			out[i] = domain.YearRecord{Balance: dec(b)}
		}
		return out
	}

	assert.False(t, isSuccessful(records("50", "0", "0")))
	assert.False(t, isSuccessful(records("50", "0", "20")), "a recovery does not undo the failure")
	assert.True(t, isSuccessful(records("50", "10", "5")))
	assert.Equal(t, 1, yearsSurvived(records("50", "0", "20")))
	assert.Equal(t, 3, yearsSurvived(records("50", "10", "5")))
}
