package greenops

import (
	"fmt"
	"math"
)

// Calculate converts an energy amount to carbon and its equivalencies.
// Amounts under MinEquivalencyThresholdKg of carbon return IsEmpty.
func Calculate(input EnergyInput) (EquivalencyOutput, error) {
	kwh, err := NormalizeToKWh(input.Value, input.Unit)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}

	out, err := CalculateCarbon(CarbonFromKWh(kwh))
	out.InputKWh = kwh
	return out, err
}

// CalculateCarbon computes equivalencies for an amount of kg CO2e.
func CalculateCarbon(kg float64) (EquivalencyOutput, error) {
	if math.IsInf(kg, 0) || math.IsNaN(kg) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}
	if kg < 0 {
		return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
	}
	if kg < MinEquivalencyThresholdKg {
		return EquivalencyOutput{CarbonKg: kg, IsEmpty: true}, nil
	}

	miles := kg / EPAMilesDrivenFactor
	phones := kg / EPASmartphoneChargeFactor
	if math.IsInf(miles, 0) || math.IsInf(phones, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	milesFormatted := formatEquivalencyValue(miles)
	phonesFormatted := formatEquivalencyValue(phones)

	results := []EquivalencyResult{
		{Type: EquivalencyMilesDriven, Value: miles, FormattedValue: milesFormatted, Label: "miles driven"},
		{Type: EquivalencySmartphonesCharged, Value: phones, FormattedValue: phonesFormatted, Label: "smartphones charged"},
	}
	if kg >= MinLongTermThresholdKg {
		seedlings := kg / EPATreeSeedlingFactor
		homeDays := kg / EPAHomeDayFactor
		results = append(results,
			EquivalencyResult{
				Type: EquivalencyTreeSeedlings, Value: seedlings,
				FormattedValue: FormatFloat(seedlings, 1), Label: "tree seedlings grown for 10 years",
			},
			EquivalencyResult{
				Type: EquivalencyHomeDays, Value: homeDays,
				FormattedValue: FormatFloat(homeDays, 1), Label: "days of home electricity",
			},
		)
	}

	return EquivalencyOutput{
		CarbonKg: kg,
		Results:  results,
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones",
			milesFormatted, phonesFormatted),
		CompactText: fmt.Sprintf("(≈ %s mi, %s phones)", milesFormatted, phonesFormatted),
	}, nil
}

func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
