package score

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is.
var (
	// ErrOutOfRange indicates a numeric field outside its nominal range.
	ErrOutOfRange = constError("value outside nominal range")

	// ErrUnknownOption indicates a categorical value that is not offered.
	ErrUnknownOption = constError("unknown option")
)

// Field names as they appear on the wire and in error messages.
const (
	FieldUsagePercent    = "usage_percent"
	FieldHumidityPercent = "humidity_percent"
	FieldSolarKWh        = "solar_kwh"
	FieldWallMaterial    = "wall_material"
	FieldRoofType        = "roof_type"
	FieldOrientation     = "building_orientation"
)

// Nominal ranges.
const (
	MinPercent  = 0.0
	MaxPercent  = 100.0
	MinSolarKWh = 0.0
	MaxSolarKWh = 20.0
)

// ValidationError reports a single field outside its nominal range.
type ValidationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
	Unit  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be between %g and %g%s, got %g", e.Field, e.Min, e.Max, e.unitSuffix(), e.Value)
}

// Unwrap lets callers match any ValidationError with errors.Is(err, ErrOutOfRange).
func (e *ValidationError) Unwrap() error { return ErrOutOfRange }

// Message returns the short form shown next to a form field.
func (e *ValidationError) Message() string {
	return fmt.Sprintf("Must be between %g and %g%s", e.Min, e.Max, e.unitSuffix())
}

func (e *ValidationError) unitSuffix() string {
	if e.Unit == "" {
		return ""
	}
	return " " + e.Unit
}

// Validate checks the numeric fields against their nominal ranges.
// Every failing field is reported; the returned error joins one
// *ValidationError per field. NaN and infinities are out of range.
func Validate(in Input) error {
	var errs []error
	if err := CheckField(FieldUsagePercent, in.UsagePercent); err != nil {
		errs = append(errs, err)
	}
	if err := CheckField(FieldHumidityPercent, in.HumidityPercent); err != nil {
		errs = append(errs, err)
	}
	if err := CheckField(FieldSolarKWh, in.SolarKWh); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CheckField validates a single numeric field by name. Unknown field names
// are accepted.
func CheckField(field string, value float64) error {
	lo, hi, unit, ok := rangeFor(field)
	if !ok {
		return nil
	}
	if math.IsNaN(value) || value < lo || value > hi {
		return &ValidationError{Field: field, Value: value, Min: lo, Max: hi, Unit: unit}
	}
	return nil
}

// FieldErrors flattens an error returned by Validate into a field -> message map.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var ve *ValidationError
			if errors.As(e, &ve) {
				out[ve.Field] = ve.Message()
			}
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		out[ve.Field] = ve.Message()
	}
	return out
}

func rangeFor(field string) (float64, float64, string, bool) {
	switch field {
	case FieldUsagePercent, FieldHumidityPercent:
		return MinPercent, MaxPercent, "", true
	case FieldSolarKWh:
		return MinSolarKWh, MaxSolarKWh, "kWh", true
	default:
		return 0, 0, "", false
	}
}

// WallMaterials lists the wall materials in form order.
func WallMaterials() []WallMaterial {
	return []WallMaterial{WallBrick, WallConcrete, WallWood, WallStone, WallMetal, WallGlass}
}

// RoofTypes lists the roof types in form order, followed by the scored aliases.
func RoofTypes() []RoofType {
	return []RoofType{
		RoofAsphaltShingles, RoofMetalRoof, RoofClayTiles, RoofConcreteTiles,
		RoofWoodShingles, RoofSolarTiles, RoofMetal, RoofSolarRoof,
	}
}

// Orientations lists the building orientations in form order.
func Orientations() []Orientation {
	return []Orientation{
		OrientationNorth, OrientationSouth, OrientationEast, OrientationWest,
		OrientationNortheast, OrientationNorthwest, OrientationSoutheast, OrientationSouthwest,
	}
}

// ParseWallMaterial matches s case-insensitively against the known wall
// materials. An empty string yields an empty material.
func ParseWallMaterial(s string) (WallMaterial, error) {
	return parseOption(FieldWallMaterial, s, WallMaterials())
}

// ParseRoofType matches s case-insensitively against the known roof types.
func ParseRoofType(s string) (RoofType, error) {
	return parseOption(FieldRoofType, s, RoofTypes())
}

// ParseOrientation matches s case-insensitively against the known orientations.
func ParseOrientation(s string) (Orientation, error) {
	return parseOption(FieldOrientation, s, Orientations())
}

func parseOption[T ~string](field, s string, options []T) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, opt := range options {
		if strings.EqualFold(string(opt), s) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("%w for %s: %q", ErrUnknownOption, field, s)
}
