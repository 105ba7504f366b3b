package score

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      Input
		wantFields []string
	}{
		{name: "defaults are valid", input: DefaultInput()},
		{name: "lower bounds inclusive", input: Input{}},
		{name: "upper bounds inclusive", input: Input{UsagePercent: 100, HumidityPercent: 100, SolarKWh: 20}},
		{name: "usage above range", input: Input{UsagePercent: 100.1}, wantFields: []string{FieldUsagePercent}},
		{name: "humidity below range", input: Input{HumidityPercent: -1}, wantFields: []string{FieldHumidityPercent}},
		{name: "solar above range", input: Input{SolarKWh: 21}, wantFields: []string{FieldSolarKWh}},
		{name: "NaN rejected", input: Input{UsagePercent: math.NaN()}, wantFields: []string{FieldUsagePercent}},
		{name: "infinity rejected", input: Input{SolarKWh: math.Inf(1)}, wantFields: []string{FieldSolarKWh}},
		{
			name:       "every failing field reported",
			input:      Input{UsagePercent: -5, HumidityPercent: 150, SolarKWh: -1},
			wantFields: []string{FieldUsagePercent, FieldHumidityPercent, FieldSolarKWh},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)

			fields := FieldErrors(err)
			assert.Len(t, fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	err := CheckField(FieldSolarKWh, 25)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Must be between 0 and 20 kWh", ve.Message())
	assert.Equal(t, "solar_kwh must be between 0 and 20 kWh, got 25", ve.Error())

	err = CheckField(FieldUsagePercent, 101)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Must be between 0 and 100", ve.Message())

	assert.NoError(t, CheckField("unknown", 1e9))
}

func TestFieldErrorsSingle(t *testing.T) {
	fields := FieldErrors(CheckField(FieldHumidityPercent, -3))
	assert.Equal(t, map[string]string{FieldHumidityPercent: "Must be between 0 and 100"}, fields)
	assert.Empty(t, FieldErrors(nil))
}

func TestParseOptions(t *testing.T) {
	t.Run("wall material", func(t *testing.T) {
		got, err := ParseWallMaterial("brick")
		require.NoError(t, err)
		assert.Equal(t, WallBrick, got)

		got, err = ParseWallMaterial("  ")
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = ParseWallMaterial("straw")
		assert.ErrorIs(t, err, ErrUnknownOption)
	})

	t.Run("roof type", func(t *testing.T) {
		got, err := ParseRoofType("solar roof")
		require.NoError(t, err)
		assert.Equal(t, RoofSolarRoof, got)

		got, err = ParseRoofType("Solar Tiles")
		require.NoError(t, err)
		assert.Equal(t, RoofSolarTiles, got)

		_, err = ParseRoofType("thatch")
		assert.ErrorIs(t, err, ErrUnknownOption)
	})

	t.Run("orientation", func(t *testing.T) {
		got, err := ParseOrientation("SOUTHWEST")
		require.NoError(t, err)
		assert.Equal(t, OrientationSouthwest, got)

		_, err = ParseOrientation("up")
		require.Error(t, err)
		assert.Contains(t, err.Error(), FieldOrientation)
	})
}

func TestOptionLists(t *testing.T) {
	assert.Len(t, WallMaterials(), 6)
	assert.Len(t, Orientations(), 8)
	assert.Contains(t, RoofTypes(), RoofSolarRoof)
	assert.Contains(t, RoofTypes(), RoofMetal)
	assert.Len(t, Tips(), 4)
	assert.Len(t, Appliances(), 4)
}
