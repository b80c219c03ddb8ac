package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/output"
)

// Solves the tax gross-up for one shortfall against a profile's tax table and
// logs each fixed-point iteration at debug level.
func main() {
	profilePath := flag.String("profile", "", "profile YAML (default: built-in example)")
	shortfall := flag.Float64("shortfall", 60000, "after-tax amount needed from the portfolio")
	taxable := flag.Float64("taxable", 0, "taxable non-portfolio income")
	flag.Parse()

	parser := config.NewInputParser()
	profile := parser.CreateExampleProfile()
	if *profilePath != "" {
		p, err := parser.LoadFromFile(*profilePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		profile = p
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	engine := calculation.NewTaxEngine(profile.TaxRates)
	engine.Logger = calculation.NewSlogLogger(logger)

	res, err := engine.GrossUp(decimal.NewFromFloat(*shortfall), decimal.NewFromFloat(*taxable))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Withdrawal:    %s\n", output.FormatCurrency(res.Withdrawal))
	fmt.Printf("Tax:           %s\n", output.FormatCurrency(res.Tax))
	fmt.Printf("Marginal rate: %s\n", output.FormatRate(res.MarginalRate, 0))
	fmt.Printf("Iterations:    %d\n", res.Iterations)
}
