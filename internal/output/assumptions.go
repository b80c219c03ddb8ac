package output

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// DefaultAssumptions lists modeling assumptions that hold for every profile.
var DefaultAssumptions = []string{
	"All amounts are in today's dollars; returns are real",
	"Social Security is interpolated between ages 62, 67 and 70; 85% is taxable",
	"Tax brackets and standard deduction held constant (no inflation indexing)",
	"Withdrawals are grossed up so taxes are paid from the portfolio",
}

// GenerateAssumptions creates the assumptions list from the profile's values
func GenerateAssumptions(profile *domain.Profile) []string {
	if profile == nil {
		return DefaultAssumptions
	}
	pf := profile.Portfolio
	mix := func(a domain.Allocation) string {
		return fmt.Sprintf("%s%% US / %s%% intl / %s%% bonds",
			a.USEquities.String(), a.International.String(), a.Bonds.String())
	}
	out := []string{
		fmt.Sprintf("Starting balance: %s", FormatWholeCurrency(pf.Balance)),
		fmt.Sprintf("Allocation pre-retirement: %s", mix(pf.PreRetirementAllocation)),
		fmt.Sprintf("Allocation post-retirement: %s", mix(pf.PostRetirementAllocation)),
	}
	mean, sd := pf.ExpectedReturns(), pf.StandardDeviations()
	for _, class := range domain.AssetClasses {
		out = append(out, fmt.Sprintf("%s return: %s (std dev %s)",
			class, FormatPercentage(mean.Get(class)), FormatPercentage(sd.Get(class))))
	}
	out = append(out,
		fmt.Sprintf("Expected inflation: %s", FormatPercentage(pf.ExpectedInflation)),
		fmt.Sprintf("Expenses: %s per month", FormatWholeCurrency(profile.Expenses.Monthly)),
		fmt.Sprintf("Standard deduction: %s", FormatWholeCurrency(profile.TaxRates.StandardDeduction)),
	)
	return append(out, DefaultAssumptions...)
}
