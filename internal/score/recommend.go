package score

// Recommendation messages, in evaluation order.
const (
	RecommendAppliances  = "Consider upgrading to more energy-efficient appliances"
	RecommendHumidity    = "Maintain optimal humidity levels between 40-50% for energy efficiency"
	RecommendSolarPanels = "Installing or expanding solar panels could significantly improve your energy score"
	RecommendSolarRoof   = "Upgrading to a solar roof could improve energy efficiency significantly"
	RecommendOrientation = "Consider adjusting solar panel orientation for optimal energy capture"
	RecommendOffPeak     = "Set appliances to run during off-peak hours to save energy"
	RecommendOptimized   = "Your settings are already optimized for energy efficiency!"
)

// Rule thresholds.
const (
	applianceUsageThreshold = 60.0
	humidityLowThreshold    = 30.0
	humidityHighThreshold   = 60.0
	solarThresholdKWh       = 5.0
	offPeakScoreThreshold   = 70.0
)

// rule pairs a recommendation with the condition that triggers it.
type rule struct {
	message string
	applies func(in Input, predicted float64) bool
}

//nolint:gochecknoglobals // Ordered rule table; order is part of the output contract.
var rules = []rule{
	{RecommendAppliances, func(in Input, _ float64) bool {
		return in.UsagePercent < applianceUsageThreshold
	}},
	{RecommendHumidity, func(in Input, _ float64) bool {
		return in.HumidityPercent < humidityLowThreshold || in.HumidityPercent > humidityHighThreshold
	}},
	{RecommendSolarPanels, func(in Input, _ float64) bool {
		return in.SolarKWh < solarThresholdKWh
	}},
	{RecommendSolarRoof, func(in Input, _ float64) bool {
		return in.RoofType != RoofSolarRoof
	}},
	{RecommendOrientation, func(in Input, _ float64) bool {
		return in.Orientation != OrientationSouth && in.SolarKWh > 0
	}},
	{RecommendOffPeak, func(_ Input, predicted float64) bool {
		return predicted < offPeakScoreThreshold
	}},
}

// Recommend evaluates the recommendation rules in order against the input and
// its predicted score. It always returns at least one message: when no rule
// applies the result holds only RecommendOptimized.
func Recommend(in Input, predicted float64) []string {
	var out []string
	for _, r := range rules {
		if r.applies(in, predicted) {
			out = append(out, r.message)
		}
	}
	if len(out) == 0 {
		out = append(out, RecommendOptimized)
	}
	return out
}
