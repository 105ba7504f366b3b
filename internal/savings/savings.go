// Package savings estimates yearly savings from a household's utility bills
// using industry-average efficiency rates.
package savings

import (
	"errors"
	"fmt"
	"math"

	"github.com/rshade/ecopredict/internal/greenops"
)

// Industry-average rates applied to the bills.
const (
	EnergyEfficiencyRate = 0.25
	WaterEfficiencyRate  = 0.20
	MonthsPerYear        = 12

	// ElectricityPriceUSDPerKWh converts dollars saved to kWh avoided.
	ElectricityPriceUSDPerKWh = 0.12
)

// ErrInvalidBill is returned for negative or non-finite inputs.
var ErrInvalidBill = errors.New("invalid bill input")

// BillInput describes a household's monthly bills.
type BillInput struct {
	MonthlyEnergyBill float64 `json:"monthly_energy_bill"`
	MonthlyWaterBill  float64 `json:"monthly_water_bill"`

	// HomeSizeSqFt and Appliances are recorded with the estimate but do not
	// change it.
	HomeSizeSqFt float64 `json:"home_size_sqft"`
	Appliances   int     `json:"appliances"`
}

// Estimate is the yearly outcome of Calculate. Dollar amounts are USD.
type Estimate struct {
	Input             BillInput                  `json:"input"`
	EnergySavings     float64                    `json:"energy_savings"`
	WaterSavings      float64                    `json:"water_savings"`
	TotalSavings      float64                    `json:"total_savings"`
	EnergySavedKWh    float64                    `json:"energy_saved_kwh"`
	CarbonReductionKg float64                    `json:"carbon_reduction_kg"`
	Equivalency       greenops.EquivalencyOutput `json:"equivalency"`
}

// Calculate estimates yearly savings for in.
func Calculate(in BillInput) (Estimate, error) {
	if err := validate(in); err != nil {
		return Estimate{}, err
	}

	energy := in.MonthlyEnergyBill * EnergyEfficiencyRate * MonthsPerYear
	water := in.MonthlyWaterBill * WaterEfficiencyRate * MonthsPerYear
	kwh := energy / ElectricityPriceUSDPerKWh

	eq, err := greenops.Calculate(greenops.EnergyInput{Value: kwh, Unit: "kWh"})
	if err != nil {
		return Estimate{}, fmt.Errorf("carbon equivalency: %w", err)
	}

	return Estimate{
		Input:             in,
		EnergySavings:     energy,
		WaterSavings:      water,
		TotalSavings:      energy + water,
		EnergySavedKWh:    kwh,
		CarbonReductionKg: greenops.CarbonFromKWh(kwh),
		Equivalency:       eq,
	}, nil
}

func validate(in BillInput) error {
	var errs []error
	check := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidBill, name, v))
		}
	}
	check("monthly_energy_bill", in.MonthlyEnergyBill)
	check("monthly_water_bill", in.MonthlyWaterBill)
	check("home_size_sqft", in.HomeSizeSqFt)
	if in.Appliances < 0 {
		errs = append(errs, fmt.Errorf("%w: appliances must be >= 0, got %d", ErrInvalidBill, in.Appliances))
	}
	return errors.Join(errs...)
}
