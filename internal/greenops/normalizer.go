package greenops

import (
	"math"
	"strings"
)

func unitFactor(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "wh":
		return WhToKWh, true
	case "kwh", "":
		return KWhToKWh, true
	case "mwh":
		return MWhToKWh, true
	default:
		return 0, false
	}
}

// NormalizeToKWh converts an energy amount to kWh. Units are Wh, kWh and
// MWh, case-insensitive; an empty unit means kWh.
func NormalizeToKWh(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, ok := unitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}
	return result, nil
}

// IsRecognizedUnit reports whether unit is a supported energy unit.
func IsRecognizedUnit(unit string) bool {
	_, ok := unitFactor(unit)
	return ok
}

// CarbonFromKWh returns kg CO2e for kWh of grid electricity.
func CarbonFromKWh(kwh float64) float64 {
	return kwh * GridCarbonIntensity
}
