package calculation

import (
	"testing"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("got %s want %s %v", got.String(), want, msgAndArgs)
	}
}

func assertDecimalNear(t *testing.T, want string, got decimal.Decimal, tolerance string) {
	t.Helper()
	if got.Sub(dec(want)).Abs().GreaterThan(dec(tolerance)) {
		t.Errorf("got %s want %s +/- %s", got.String(), want, tolerance)
	}
}

var allUS = domain.Allocation{USEquities: dec("100")}

// retiredProfile is one retiree, already retired, simulated for two years
// with 10% US returns, $12,000 annual expenses and no tax.
func retiredProfile() *domain.Profile {
	return &domain.Profile{
		Retirees: []domain.Retiree{{
			Name:              "Pat",
			BirthDate:         time.Date(1965, 1, 1, 0, 0, 0, 0, time.UTC),
			RetirementAge:     60,
			LifeExpectancy:    62,
			SocialSecurityAge: dec("67"),
		}},
		Portfolio: domain.Portfolio{
			Balance:                     dec("100000"),
			PreRetirementAllocation:     allUS,
			PostRetirementAllocation:    allUS,
			USEquityExpectedReturn:      dec("10"),
			InternationalExpectedReturn: dec("6"),
			BondsExpectedReturn:         dec("3"),
			USEquityStdDev:              dec("15"),
			InternationalStdDev:         dec("17"),
			BondsStdDev:                 dec("5"),
		},
		Expenses: domain.Expenses{Monthly: dec("1000")},
	}
}

func constantDataset(t *testing.T, first, last int, us, intl, bonds string) *HistoricalDataset {
	t.Helper()
	var rows []MarketYear
	for y := first; y <= last; y++ {
		u, i, b := dec(us), dec(intl), dec(bonds)
		rows = append(rows, MarketYear{Year: y, USEquities: &u, International: &i, Bonds: &b})
	}
	ds, err := NewHistoricalDataset(rows)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	return ds
}
