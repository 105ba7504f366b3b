package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/score"
)

// inputFlags binds one flag per score input.
type inputFlags struct {
	usage       float64
	humidity    float64
	solar       float64
	wall        string
	roof        string
	orientation string
}

// inputFlagNames lists the flags registered by bind.
//
//nolint:gochecknoglobals // Static flag table.
var inputFlagNames = []string{"usage", "humidity", "solar", "wall", "roof", "orientation"}

func (f *inputFlags) bind(cmd *cobra.Command) {
	def := score.DefaultInput()
	cmd.Flags().Float64Var(&f.usage, "usage", def.UsagePercent, "energy-efficient appliance usage percent (0-100)")
	cmd.Flags().Float64Var(&f.humidity, "humidity", def.HumidityPercent, "relative humidity percent (0-100)")
	cmd.Flags().Float64Var(&f.solar, "solar", def.SolarKWh, "solar energy generated per day in kWh (0-20)")
	cmd.Flags().StringVar(&f.wall, "wall", string(def.WallMaterial), "wall material (Brick, Concrete, Wood, Stone, Metal, Glass)")
	cmd.Flags().StringVar(&f.roof, "roof", string(def.RoofType), "roof type, e.g. \"Solar Roof\" or Metal")
	cmd.Flags().StringVar(&f.orientation, "orientation", string(def.Orientation), "building orientation (North, South, East, West, ...)")
}

// anyChanged reports whether the user set any input flag.
func (f *inputFlags) anyChanged(cmd *cobra.Command) bool {
	for _, name := range inputFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// input parses the categorical flags and validates the numeric ones. Any
// failure is returned as an ExitError with ExitCodeValidation.
func (f *inputFlags) input() (score.Input, error) {
	in := score.Input{
		UsagePercent:    f.usage,
		HumidityPercent: f.humidity,
		SolarKWh:        f.solar,
	}

	var errs []error
	var err error
	if in.WallMaterial, err = score.ParseWallMaterial(f.wall); err != nil {
		errs = append(errs, err)
	}
	if in.RoofType, err = score.ParseRoofType(f.roof); err != nil {
		errs = append(errs, err)
	}
	if in.Orientation, err = score.ParseOrientation(f.orientation); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return score.Input{}, validationError(errors.Join(errs...))
	}

	if err := score.Validate(in); err != nil {
		return score.Input{}, validationError(formatFieldErrors(err))
	}
	return in, nil
}
