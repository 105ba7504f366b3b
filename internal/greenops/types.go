// Package greenops turns energy savings into carbon figures people can
// picture: kWh avoided becomes kg CO2e, then miles not driven, phones
// charged, tree seedlings and days of household electricity.
package greenops

import "fmt"

// EquivalencyType is a category of carbon equivalency.
type EquivalencyType int

const (
	// EquivalencyMilesDriven is miles driven in an average passenger vehicle.
	EquivalencyMilesDriven EquivalencyType = iota

	// EquivalencySmartphonesCharged is full smartphone charges.
	EquivalencySmartphonesCharged

	// EquivalencyTreeSeedlings is tree seedlings grown for 10 years.
	EquivalencyTreeSeedlings

	// EquivalencyHomeDays is days of average US home electricity use.
	EquivalencyHomeDays
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyMilesDriven:
		return "MilesDriven"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	case EquivalencyHomeDays:
		return "HomeDays"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// EnergyInput is an amount of electricity saved.
type EnergyInput struct {
	Value float64 `json:"value"`

	// Unit is Wh, kWh or MWh (case-insensitive).
	Unit string `json:"unit"`
}

// EquivalencyResult is a single calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`

	// Label is the descriptive phrase, e.g. "miles driven".
	Label string `json:"label"`
}

// EquivalencyOutput holds all equivalencies for one energy amount.
type EquivalencyOutput struct {
	InputKWh float64 `json:"input_kwh"`
	CarbonKg float64 `json:"carbon_kg"`

	// Results are in display priority order.
	Results []EquivalencyResult `json:"results"`

	// DisplayText is prose for reports, e.g.
	// "Equivalent to driving ~26 miles or charging ~608 smartphones".
	DisplayText string `json:"display_text"`

	// CompactText is the short form for tables, e.g. "(≈ 26 mi, 608 phones)".
	CompactText string `json:"compact_text"`

	// IsEmpty is true when the carbon amount is too small to be meaningful.
	IsEmpty bool `json:"is_empty"`
}
