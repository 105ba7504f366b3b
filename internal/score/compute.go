package score

import "math"

// Score weights.
const (
	baseScore = 50.0

	usageWeight       = 0.2
	humidityOptimum   = 45.0
	humidityWeight    = 0.1
	solarWeight       = 2.0
	maxScore          = 100.0
	minScore          = 0.0
	scoreRoundingBase = 10.0

	wallBrickBonus    = 5.0
	wallConcreteBonus = 3.0
	wallWoodPenalty   = -2.0

	roofSolarBonus = 8.0
	roofMetalBonus = 4.0

	orientationSouthBonus    = 5.0
	orientationEastWestBonus = 2.0
	orientationNorthPenalty  = -1.0
)

// Savings factors, applied to the gap between the score and a perfect 100.
const (
	energyKWhPerPoint = 0.5
	waterGalPerPoint  = 2.5
	costUSDPerPoint   = 0.3
	monthsPerYear     = 12
)

// Compute scores the input and derives recommendations and savings.
//
// Compute never fails: values outside the nominal ranges are scored as given.
// Callers that need range checks run Validate first. Recommendations and
// savings use the clamped score; only PredictedScore is rounded.
func Compute(in Input) Result {
	clamped := clamp(RawScore(in))

	return Result{
		PredictedScore:  math.Round(clamped*scoreRoundingBase) / scoreRoundingBase,
		Recommendations: Recommend(in, clamped),
		Savings:         SavingsFor(clamped),
		Model:           Model,
	}
}

// RawScore returns the unclamped weighted sum for the input.
func RawScore(in Input) float64 {
	score := baseScore
	score += in.UsagePercent * usageWeight
	score -= math.Abs(in.HumidityPercent-humidityOptimum) * humidityWeight
	score += in.SolarKWh * solarWeight
	score += wallAdjustment(in.WallMaterial)
	score += roofAdjustment(in.RoofType)
	score += orientationAdjustment(in.Orientation)
	return score
}

// SavingsFor derives the savings potential from a predicted score.
// Each value is rounded half away from zero.
func SavingsFor(predicted float64) Savings {
	gap := maxScore - predicted
	return Savings{
		EnergyKWhPerMonth: int(math.Round(gap * energyKWhPerPoint)),
		WaterGalPerMonth:  int(math.Round(gap * waterGalPerPoint)),
		CostUSDPerYear:    int(math.Round(gap * costUSDPerPoint * monthsPerYear)),
	}
}

// clamp bounds score to [minScore, maxScore]. NaN maps to minScore.
func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return minScore
	}
	return math.Max(minScore, math.Min(maxScore, score))
}

func wallAdjustment(w WallMaterial) float64 {
	switch w {
	case WallBrick:
		return wallBrickBonus
	case WallConcrete:
		return wallConcreteBonus
	case WallWood:
		return wallWoodPenalty
	default:
		return 0
	}
}

func roofAdjustment(r RoofType) float64 {
	switch r {
	case RoofSolarRoof:
		return roofSolarBonus
	case RoofMetal:
		return roofMetalBonus
	default:
		return 0
	}
}

func orientationAdjustment(o Orientation) float64 {
	switch o {
	case OrientationSouth:
		return orientationSouthBonus
	case OrientationEast, OrientationWest:
		return orientationEastWestBonus
	case OrientationNorth:
		return orientationNorthPenalty
	default:
		return 0
	}
}
