package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/output"
)

// Prints the monthly Social Security benefit for claiming ages 60 to 72 in
// quarter-year steps, given the early, full and delayed amounts.
func main() {
	early := flag.Float64("early", 1680, "monthly benefit at 62")
	full := flag.Float64("full", 2400, "monthly benefit at 67")
	delayed := flag.Float64("delayed", 2976, "monthly benefit at 70")
	flag.Parse()

	e, f, d := decimal.NewFromFloat(*early), decimal.NewFromFloat(*full), decimal.NewFromFloat(*delayed)
	step := decimal.RequireFromString("0.25")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Claim age", "Monthly", "Annual")
	for age := decimal.NewFromInt(60); age.LessThanOrEqual(decimal.NewFromInt(72)); age = age.Add(step) {
		monthly := calculation.SocialSecurityMonthly(age, e, f, d)
		if err := table.Append(age.StringFixed(2), output.FormatCurrency(monthly), output.FormatCurrency(monthly.Mul(decimal.NewFromInt(12)))); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := table.Render(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
