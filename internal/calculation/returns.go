package calculation

import (
	"math/rand/v2"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// samplePlaces bounds the precision of sampled returns (percent units).
const samplePlaces = 6

// YearContext tells a ReturnModel which simulated year is being grown.
type YearContext struct {
	Index   int // zero-based year of the trajectory
	Year    int // calendar year simulated
	Retired bool
}

// ReturnModel yields per-asset-class annual returns, in percent, for each
// simulated year. Stateful models must be called exactly once per year in
// order and must not be shared between trajectories.
type ReturnModel interface {
	Returns(yc YearContext) (domain.AssetClassReturns, error)
}

// marketYearSource is implemented by models that replay a calendar year.
type marketYearSource interface {
	MarketYear(yc YearContext) int
}

// UniformReturns applies the same expected returns every year.
type UniformReturns struct {
	Expected domain.AssetClassReturns
}

// Returns implements ReturnModel
func (u UniformReturns) Returns(YearContext) (domain.AssetClassReturns, error) {
	return u.Expected, nil
}

// MonteCarloReturns draws each class return from a normal distribution with
// the configured mean and standard deviation. Each draw consumes the model's
// own random stream; one instance serves exactly one trajectory.
type MonteCarloReturns struct {
	Means   domain.AssetClassReturns
	StdDevs domain.AssetClassReturns
	rng     *rand.Rand
}

// NewMonteCarloReturns builds the return stream for one trial. The same
// (seed, trial) pair always produces the same sequence.
func NewMonteCarloReturns(means, stdDevs domain.AssetClassReturns, seed int64, trial int) *MonteCarloReturns {
	return &MonteCarloReturns{
		Means:   means,
		StdDevs: stdDevs,
		rng:     rand.New(rand.NewPCG(uint64(seed), uint64(trial))),
	}
}

// Returns implements ReturnModel
func (m *MonteCarloReturns) Returns(YearContext) (domain.AssetClassReturns, error) {
	return domain.AssetClassReturns{
		USEquities:    m.sample(m.Means.USEquities, m.StdDevs.USEquities),
		International: m.sample(m.Means.International, m.StdDevs.International),
		Bonds:         m.sample(m.Means.Bonds, m.StdDevs.Bonds),
	}, nil
}

// sample returns mean + z*stdDev; with a zero deviation it is exactly the mean.
func (m *MonteCarloReturns) sample(mean, stdDev decimal.Decimal) decimal.Decimal {
	z := decimal.NewFromFloat(m.rng.NormFloat64())
	return mean.Add(z.Mul(stdDev).Round(samplePlaces))
}
