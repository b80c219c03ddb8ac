package domain

import (
	"fmt"
	"time"

	"github.com/rpgo/retirement-simulator/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Retiree represents one member of the household and their income streams.
// Monthly amounts are in today's dollars; percentages are 0-100.
type Retiree struct {
	Name                string          `yaml:"name" json:"name"`
	BirthDate           time.Time       `yaml:"date_of_birth" json:"date_of_birth"`
	RetirementAge       int             `yaml:"retirement_age" json:"retirement_age"`
	LifeExpectancy      int             `yaml:"life_expectancy" json:"life_expectancy"`
	AnnualSalary        decimal.Decimal `yaml:"wage_annual_salary" json:"wage_annual_salary"`
	ContributionPercent decimal.Decimal `yaml:"retirement_contribution_percent" json:"retirement_contribution_percent"`

	SocialSecurityAge     decimal.Decimal `yaml:"social_security_age" json:"social_security_age"`
	SocialSecurityEarly   decimal.Decimal `yaml:"social_security_amount_early" json:"social_security_amount_early"`
	SocialSecurityFull    decimal.Decimal `yaml:"social_security_amount_full" json:"social_security_amount_full"`
	SocialSecurityDelayed decimal.Decimal `yaml:"social_security_amount_delayed" json:"social_security_amount_delayed"`

	// PensionAge of 0 means no pension.
	PensionAge     int             `yaml:"pension_age" json:"pension_age"`
	PensionMonthly decimal.Decimal `yaml:"pension_monthly_income" json:"pension_monthly_income"`

	OtherMonthlyIncome decimal.Decimal `yaml:"other_monthly_retirement_income" json:"other_monthly_retirement_income"`
}

// retireeYAML mirrors Retiree with the birth date as text so both MM/DD/YYYY and
// ISO dates are accepted. life_expectency is the legacy spelling of life_expectancy.
type retireeYAML struct {
	Name                  string          `yaml:"name"`
	DateOfBirth           string          `yaml:"date_of_birth"`
	RetirementAge         int             `yaml:"retirement_age"`
	LifeExpectancy        int             `yaml:"life_expectancy"`
	LegacyLifeExpectancy  int             `yaml:"life_expectency,omitempty"`
	AnnualSalary          decimal.Decimal `yaml:"wage_annual_salary"`
	ContributionPercent   decimal.Decimal `yaml:"retirement_contribution_percent"`
	SocialSecurityAge     decimal.Decimal `yaml:"social_security_age"`
	SocialSecurityEarly   decimal.Decimal `yaml:"social_security_amount_early"`
	SocialSecurityFull    decimal.Decimal `yaml:"social_security_amount_full"`
	SocialSecurityDelayed decimal.Decimal `yaml:"social_security_amount_delayed"`
	PensionAge            int             `yaml:"pension_age"`
	PensionMonthly        decimal.Decimal `yaml:"pension_monthly_income"`
	OtherMonthlyIncome    decimal.Decimal `yaml:"other_monthly_retirement_income"`
}

// UnmarshalYAML implements custom YAML unmarshaling for Retiree
func (r *Retiree) UnmarshalYAML(value *yaml.Node) error {
	var aux retireeYAML
	if err := value.Decode(&aux); err != nil {
		return err
	}

	birth, err := dateutil.ParseDate(aux.DateOfBirth)
	if err != nil {
		return fmt.Errorf("retiree %q date_of_birth: %w", aux.Name, err)
	}

	life := aux.LifeExpectancy
	if life == 0 {
		life = aux.LegacyLifeExpectancy
	}

	*r = Retiree{
		Name:                  aux.Name,
		BirthDate:             birth,
		RetirementAge:         aux.RetirementAge,
		LifeExpectancy:        life,
		AnnualSalary:          aux.AnnualSalary,
		ContributionPercent:   aux.ContributionPercent,
		SocialSecurityAge:     aux.SocialSecurityAge,
		SocialSecurityEarly:   aux.SocialSecurityEarly,
		SocialSecurityFull:    aux.SocialSecurityFull,
		SocialSecurityDelayed: aux.SocialSecurityDelayed,
		PensionAge:            aux.PensionAge,
		PensionMonthly:        aux.PensionMonthly,
		OtherMonthlyIncome:    aux.OtherMonthlyIncome,
	}
	return nil
}

// MarshalYAML writes the birth date back in MM/DD/YYYY form.
func (r Retiree) MarshalYAML() (interface{}, error) {
	return retireeYAML{
		Name:                  r.Name,
		DateOfBirth:           dateutil.FormatDate(r.BirthDate),
		RetirementAge:         r.RetirementAge,
		LifeExpectancy:        r.LifeExpectancy,
		AnnualSalary:          r.AnnualSalary,
		ContributionPercent:   r.ContributionPercent,
		SocialSecurityAge:     r.SocialSecurityAge,
		SocialSecurityEarly:   r.SocialSecurityEarly,
		SocialSecurityFull:    r.SocialSecurityFull,
		SocialSecurityDelayed: r.SocialSecurityDelayed,
		PensionAge:            r.PensionAge,
		PensionMonthly:        r.PensionMonthly,
		OtherMonthlyIncome:    r.OtherMonthlyIncome,
	}, nil
}

// Age calculates the retiree's age at a given date
func (r *Retiree) Age(at time.Time) int {
	return dateutil.Age(r.BirthDate, at)
}

// IsRetired reports whether the retiree has stopped working at the given age.
func (r *Retiree) IsRetired(age int) bool {
	return age >= r.RetirementAge
}

// Household is the ordered set of retirees sharing one portfolio.
// The first retiree is the primary and sets the household phase.
type Household []Retiree

// Primary returns the first retiree, or nil for an empty household.
func (h Household) Primary() *Retiree {
	if len(h) == 0 {
		return nil
	}
	return &h[0]
}

// TimelineYears is the number of simulated years: the longest remaining
// life expectancy across retirees, measured from start.
func (h Household) TimelineYears(start time.Time) int {
	years := 0
	for i := range h {
		if remaining := h[i].LifeExpectancy - h[i].Age(start); remaining > years {
			years = remaining
		}
	}
	return years
}
