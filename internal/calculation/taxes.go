package calculation

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// Gross-up solver limits.
const (
	grossUpMaxIterations = 50
	moneyPlaces          = 4
)

var grossUpTolerance = decimal.RequireFromString("0.01")

// TaxEngine computes progressive income tax from a standard deduction and
// ascending brackets. Each bracket threshold is the lower bound of its band;
// income below the first threshold is untaxed and the last rate applies
// without an upper bound.
type TaxEngine struct {
	table  domain.TaxTable
	Logger Logger
}

// NewTaxEngine creates a tax engine for the given table.
func NewTaxEngine(table domain.TaxTable) *TaxEngine {
	return &TaxEngine{table: table, Logger: NopLogger{}}
}

// CalculateTax returns the tax owed on gross income and the marginal rate
// (as a fraction) of the band the last taxable dollar falls in.
func (te *TaxEngine) CalculateTax(gross decimal.Decimal) (tax, marginal decimal.Decimal) {
	taxable := gross.Sub(te.table.StandardDeduction)
	if !taxable.IsPositive() {
		return decimal.Zero, decimal.Zero
	}

	brackets := te.table.Brackets
	tax = decimal.Zero
	marginal = decimal.Zero
	for i, b := range brackets {
		if taxable.LessThanOrEqual(b.Threshold) {
			break
		}
		upper := taxable
		if i+1 < len(brackets) && brackets[i+1].Threshold.LessThan(taxable) {
			upper = brackets[i+1].Threshold
		}
		rate := b.Rate.Div(hundred)
		tax = tax.Add(upper.Sub(b.Threshold).Mul(rate))
		marginal = rate
	}

	return tax.Round(moneyPlaces), marginal
}

// GrossUpResult is the solution of the withdrawal fixed point.
type GrossUpResult struct {
	Withdrawal   decimal.Decimal
	Tax          decimal.Decimal
	MarginalRate decimal.Decimal
	Iterations   int
}

// GrossUp finds the portfolio withdrawal W that covers shortfall after tax:
//
//	W = shortfall + tax(taxableIncome + W)
//
// taxableIncome is the non-portfolio taxable income of the year. Iteration
// starts at W = shortfall and stops once successive estimates differ by less
// than one cent.
func (te *TaxEngine) GrossUp(shortfall, taxableIncome decimal.Decimal) (GrossUpResult, error) {
	w := shortfall
	for i := 1; i <= grossUpMaxIterations; i++ {
		tax, marginal := te.CalculateTax(taxableIncome.Add(w))
		next := shortfall.Add(tax)
		if next.Sub(w).Abs().LessThan(grossUpTolerance) {
			return GrossUpResult{Withdrawal: next, Tax: tax, MarginalRate: marginal, Iterations: i}, nil
		}
		w = next
	}

	te.logger().Warnf("gross-up failed: shortfall=%s taxable=%s last=%s", shortfall.StringFixed(2), taxableIncome.StringFixed(2), w.StringFixed(2))
	return GrossUpResult{}, fmt.Errorf("shortfall %s after %d iterations: %w", shortfall.StringFixed(2), grossUpMaxIterations, ErrTaxSolveFailed)
}

func (te *TaxEngine) logger() Logger {
	return loggerOrNop(te.Logger)
}
