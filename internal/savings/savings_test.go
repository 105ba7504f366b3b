package savings_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecopredict/internal/savings"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		in         savings.BillInput
		wantEnergy float64
		wantWater  float64
		wantCarbon float64
		wantEmpty  bool
	}{
		{
			name:       "typical household",
			in:         savings.BillInput{MonthlyEnergyBill: 150, MonthlyWaterBill: 60, HomeSizeSqFt: 1800, Appliances: 6},
			wantEnergy: 450,
			wantWater:  144,
			wantCarbon: 1875,
		},
		{
			name:       "energy only",
			in:         savings.BillInput{MonthlyEnergyBill: 12},
			wantEnergy: 36,
			wantWater:  0,
			wantCarbon: 150,
		},
		{
			name:      "zero bills",
			in:        savings.BillInput{},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := savings.Calculate(tt.in)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantEnergy, got.EnergySavings, 1e-9)
			assert.InDelta(t, tt.wantWater, got.WaterSavings, 1e-9)
			assert.InDelta(t, tt.wantEnergy+tt.wantWater, got.TotalSavings, 1e-9)
			assert.InDelta(t, tt.wantCarbon, got.CarbonReductionKg, 1e-6)
			assert.Equal(t, tt.in, got.Input)
			assert.Equal(t, tt.wantEmpty, got.Equivalency.IsEmpty)
		})
	}
}

func TestCalculate_CarbonMatchesKWh(t *testing.T) {
	got, err := savings.Calculate(savings.BillInput{MonthlyEnergyBill: 100})
	require.NoError(t, err)

	// $300 saved at $0.12/kWh is 2,500 kWh, at 0.5 kg/kWh 1,250 kg.
	assert.InDelta(t, 2500.0, got.EnergySavedKWh, 1e-6)
	assert.InDelta(t, 1250.0, got.CarbonReductionKg, 1e-6)
	assert.InDelta(t, 1250.0, got.Equivalency.CarbonKg, 1e-6)
	assert.Contains(t, got.Equivalency.DisplayText, "6,510 miles")
}

func TestCalculate_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   savings.BillInput
		want string
	}{
		{"negative energy", savings.BillInput{MonthlyEnergyBill: -1}, "monthly_energy_bill"},
		{"negative water", savings.BillInput{MonthlyWaterBill: -5}, "monthly_water_bill"},
		{"nan home size", savings.BillInput{HomeSizeSqFt: math.NaN()}, "home_size_sqft"},
		{"negative appliances", savings.BillInput{Appliances: -2}, "appliances"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := savings.Calculate(tt.in)
			require.ErrorIs(t, err, savings.ErrInvalidBill)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
