package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of household profile files
type InputParser struct {
	// Now supplies the simulation start date used for age checks.
	Now func() time.Time
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{Now: time.Now}
}

// LoadFromFile loads a profile from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a profile document. JSON is accepted as a
// subset of YAML.
func (ip *InputParser) Parse(data []byte) (*domain.Profile, error) {
	var profile domain.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&profile); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &profile, nil
}

// ValidateConfiguration validates the loaded profile against the start date
func (ip *InputParser) ValidateConfiguration(profile *domain.Profile) error {
	return calculation.ValidateProfile(profile, ip.now())
}

func (ip *InputParser) now() time.Time {
	if ip.Now == nil {
		return time.Now()
	}
	return ip.Now()
}

// CreateExampleProfile creates an example two-person household
func (ip *InputParser) CreateExampleProfile() *domain.Profile {
	alexBirthDate, _ := time.Parse("2006-01-02", "1970-04-12")
	jordanBirthDate, _ := time.Parse("2006-01-02", "1972-09-30")

	return &domain.Profile{
		Retirees: []domain.Retiree{
			{
				Name:                  "Alex",
				BirthDate:             alexBirthDate,
				RetirementAge:         62,
				LifeExpectancy:        92,
				AnnualSalary:          decimal.NewFromInt(110000),
				ContributionPercent:   decimal.NewFromInt(12),
				SocialSecurityAge:     decimal.NewFromInt(67),
				SocialSecurityEarly:   decimal.NewFromInt(2100),
				SocialSecurityFull:    decimal.NewFromInt(3000),
				SocialSecurityDelayed: decimal.NewFromInt(3720),
				PensionAge:            65,
				PensionMonthly:        decimal.NewFromInt(1200),
			},
			{
				Name:                  "Jordan",
				BirthDate:             jordanBirthDate,
				RetirementAge:         60,
				LifeExpectancy:        95,
				AnnualSalary:          decimal.NewFromInt(85000),
				ContributionPercent:   decimal.NewFromInt(10),
				SocialSecurityAge:     decimal.NewFromFloat(65.5),
				SocialSecurityEarly:   decimal.NewFromInt(1500),
				SocialSecurityFull:    decimal.NewFromInt(2150),
				SocialSecurityDelayed: decimal.NewFromInt(2660),
				OtherMonthlyIncome:    decimal.NewFromInt(400),
			},
		},
		Portfolio: domain.Portfolio{
			Balance: decimal.NewFromInt(850000),
			PreRetirementAllocation: domain.Allocation{
				USEquities:    decimal.NewFromInt(60),
				International: decimal.NewFromInt(25),
				Bonds:         decimal.NewFromInt(15),
			},
			PostRetirementAllocation: domain.Allocation{
				USEquities:    decimal.NewFromInt(40),
				International: decimal.NewFromInt(15),
				Bonds:         decimal.NewFromInt(45),
			},
			USEquityExpectedReturn:      decimal.NewFromInt(7),
			USEquityStdDev:              decimal.NewFromInt(17),
			InternationalExpectedReturn: decimal.NewFromFloat(6.5),
			InternationalStdDev:         decimal.NewFromInt(19),
			BondsExpectedReturn:         decimal.NewFromFloat(3.5),
			BondsStdDev:                 decimal.NewFromInt(6),
			ExpectedInflation:           decimal.NewFromFloat(2.5),
		},
		Expenses: domain.Expenses{Monthly: decimal.NewFromInt(7500)},
		TaxRates: domain.TaxTable{
			StandardDeduction: decimal.NewFromInt(29200),
			Brackets: []domain.TaxBracket{
				{Threshold: decimal.Zero, Rate: decimal.NewFromInt(10)},
				{Threshold: decimal.NewFromInt(23200), Rate: decimal.NewFromInt(12)},
				{Threshold: decimal.NewFromInt(94300), Rate: decimal.NewFromInt(22)},
				{Threshold: decimal.NewFromInt(201050), Rate: decimal.NewFromInt(24)},
				{Threshold: decimal.NewFromInt(383900), Rate: decimal.NewFromInt(32)},
			},
		},
	}
}
