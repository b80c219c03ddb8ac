package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func loadFixtures(t *testing.T) (*domain.Profile, *calculation.HistoricalDataset) {
	t.Helper()
	parser := &config.InputParser{Now: func() time.Time { return start }}
	profile, err := parser.LoadFromFile("../testdata/example_profile.yaml")
	require.NoError(t, err)

	dataset, err := calculation.LoadReturnsCSV("../testdata/returns.csv")
	require.NoError(t, err)
	return profile, dataset
}

func TestEndToEndSimulation(t *testing.T) {
	profile, dataset := loadFixtures(t)
	require.Len(t, profile.Retirees, 2)
	assert.Equal(t, 90, profile.Retirees[0].LifeExpectancy)

	engine := calculation.NewSimulationEngine(dataset)
	engine.Start = start
	seed := int64(2025)
	engine.Seed = &seed

	report, err := engine.Run(context.Background(), profile)
	require.NoError(t, err)
	require.NotNil(t, report.Uniform)
	require.NotNil(t, report.Historical)
	require.NotNil(t, report.MonteCarlo)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "Alex", report.ProfileName)

	// Jordan (born 1962, expectancy 92) sets the 30-year horizon.
	uniform := report.Uniform.Worst()
	require.NotNil(t, uniform)
	require.Len(t, uniform.Records, 30)
	assert.Equal(t, 2025, uniform.Records[0].Year)
	assert.False(t, uniform.Records[0].Retired, "Alex works until 66")
	assert.True(t, uniform.Records[2].Retired)

	// One trajectory per start year in 1990..2009, none aborted.
	assert.Equal(t, 20, report.Historical.Completed)
	assert.Empty(t, report.Historical.Aborted)
	for _, traj := range report.Historical.Trajectories {
		assert.Equal(t, traj.Provenance.StartYear, traj.Records[0].MarketYear)
	}
	require.NotNil(t, report.Dataset)
	assert.Equal(t, 1990, report.Dataset.FirstYear)
	assert.Equal(t, 2009, report.Dataset.LastYear)

	mc := report.MonteCarlo
	assert.Equal(t, calculation.MonteCarloTrials, mc.Completed)
	assert.Equal(t, seed, mc.Seed)
	assert.True(t, mc.SuccessRate.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, mc.SuccessRate.LessThanOrEqual(decimal.NewFromInt(100)))
	assert.True(t, mc.MinTerminalBalance.LessThanOrEqual(mc.MaxTerminalBalance))
}

func TestHistoricalInternationalFallback(t *testing.T) {
	_, dataset := loadFixtures(t)

	// 1990-1994 have no international column; US equities stand in.
	r, err := dataset.Lookup(1991)
	require.NoError(t, err)
	assert.True(t, r.International.Equal(r.USEquities))
	assert.True(t, decimal.RequireFromString("30.47").Equal(r.USEquities))

	r, err = dataset.Lookup(2008)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-43.38").Equal(r.International))
	assert.True(t, decimal.RequireFromString("20.1").Equal(r.Bonds))
}

func TestConfigurationValidation(t *testing.T) {
	profile, _ := loadFixtures(t)
	parser := &config.InputParser{Now: func() time.Time { return start }}
	assert.NoError(t, parser.ValidateConfiguration(profile))

	profile.Portfolio.PostRetirementAllocation.Bonds = decimal.NewFromInt(50)
	err := parser.ValidateConfiguration(profile)
	assert.ErrorIs(t, err, calculation.ErrConfigInvalid)
}
