// Package score estimates a household energy-efficiency score.
//
// The estimate is a fixed weighted sum over a handful of household
// characteristics (efficient appliance usage, humidity, solar generation,
// wall material, roof type, building orientation). It is reported under the
// name of a gradient boosting model, but no model is trained or invoked:
// the coefficients below are the whole contract.
package score

// WallMaterial is the primary exterior wall material of a building.
type WallMaterial string

// Wall materials offered by the prediction form.
const (
	WallBrick    WallMaterial = "Brick"
	WallConcrete WallMaterial = "Concrete"
	WallWood     WallMaterial = "Wood"
	WallStone    WallMaterial = "Stone"
	WallMetal    WallMaterial = "Metal"
	WallGlass    WallMaterial = "Glass"
)

// RoofType is the roof covering of a building.
//
// Only RoofSolarRoof and RoofMetal carry a score adjustment. The form labels
// "Solar Tiles" and "Metal Roof" are distinct values and score as neutral.
type RoofType string

// Roof types accepted by the score engine.
const (
	RoofAsphaltShingles RoofType = "Asphalt Shingles"
	RoofMetal           RoofType = "Metal"
	RoofMetalRoof       RoofType = "Metal Roof"
	RoofClayTiles       RoofType = "Clay Tiles"
	RoofConcreteTiles   RoofType = "Concrete Tiles"
	RoofWoodShingles    RoofType = "Wood Shingles"
	RoofSolarTiles      RoofType = "Solar Tiles"
	RoofSolarRoof       RoofType = "Solar Roof"
)

// Orientation is the compass direction the main facade faces.
type Orientation string

// Building orientations.
const (
	OrientationNorth     Orientation = "North"
	OrientationSouth     Orientation = "South"
	OrientationEast      Orientation = "East"
	OrientationWest      Orientation = "West"
	OrientationNortheast Orientation = "Northeast"
	OrientationNorthwest Orientation = "Northwest"
	OrientationSoutheast Orientation = "Southeast"
	OrientationSouthwest Orientation = "Southwest"
)

// Input holds the household characteristics used to compute a score.
// The categorical fields are optional; an empty value applies no adjustment.
type Input struct {
	// UsagePercent is the share of energy-efficient appliance usage (nominal 0-100).
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`

	// HumidityPercent is the ambient relative humidity (nominal 0-100).
	HumidityPercent float64 `json:"humidity_percent" yaml:"humidity_percent"`

	// SolarKWh is the solar energy generated per day (nominal 0-20).
	SolarKWh float64 `json:"solar_kwh" yaml:"solar_kwh"`

	WallMaterial WallMaterial `json:"wall_material,omitempty"        yaml:"wall_material,omitempty"`
	RoofType     RoofType     `json:"roof_type,omitempty"            yaml:"roof_type,omitempty"`
	Orientation  Orientation  `json:"building_orientation,omitempty" yaml:"building_orientation,omitempty"`
}

// DefaultInput returns the values the prediction form starts with.
func DefaultInput() Input {
	return Input{
		UsagePercent:    60,
		HumidityPercent: 45,
		SolarKWh:        5,
		WallMaterial:    WallBrick,
		RoofType:        RoofAsphaltShingles,
		Orientation:     OrientationSouth,
	}
}

// Savings is the estimated reduction available by reaching a perfect score.
type Savings struct {
	EnergyKWhPerMonth int `json:"energy"`
	WaterGalPerMonth  int `json:"water"`
	CostUSDPerYear    int `json:"cost"`
}

// ModelInfo describes the model the score is attributed to.
type ModelInfo struct {
	Name      string  `json:"name"`
	Algorithm string  `json:"algorithm"`
	Accuracy  float64 `json:"accuracy"`
}

// Result is the outcome of Compute. It is never modified after creation.
type Result struct {
	PredictedScore  float64   `json:"predicted_score"`
	Recommendations []string  `json:"recommendations"`
	Savings         Savings   `json:"savings_potential"`
	Model           ModelInfo `json:"model_info"`
}

// Model is the metadata attached to every Result.
//
//nolint:gochecknoglobals // Constant metadata; structs cannot be declared const.
var Model = ModelInfo{
	Name:      "Gradient Boosting Regressor",
	Algorithm: "Ensemble Learning",
	Accuracy:  97.0,
}
