package greenops

// GridCarbonIntensity is kg CO2e emitted per kWh of grid electricity.
const GridCarbonIntensity = 0.5

// EPA equivalency divisors, kg CO2e per unit of activity.
// Source: https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
//
//	equivalency = kg_CO2e / factor
const (
	// EPAMilesDrivenFactor is kg CO2e per mile for an average passenger vehicle.
	EPAMilesDrivenFactor = 0.192

	// EPASmartphoneChargeFactor is kg CO2e per smartphone charge.
	EPASmartphoneChargeFactor = 0.00822

	// EPATreeSeedlingFactor is kg CO2e absorbed per tree seedling over 10 years.
	EPATreeSeedlingFactor = 60.0

	// EPAHomeDayFactor is kg CO2e per day of average US home electricity.
	EPAHomeDayFactor = 18.3
)

// Energy unit conversions to kWh.
const (
	WhToKWh  = 0.001
	KWhToKWh = 1.0
	MWhToKWh = 1000.0
)

// Display thresholds.
const (
	// MinEquivalencyThresholdKg is the smallest carbon amount worth describing.
	MinEquivalencyThresholdKg = 1.0

	// MinLongTermThresholdKg gates the seedling and home-day equivalencies,
	// which read as noise for small amounts.
	MinLongTermThresholdKg = EPAHomeDayFactor

	LargeNumberThreshold = 1_000_000
	BillionThreshold     = 1_000_000_000
)
