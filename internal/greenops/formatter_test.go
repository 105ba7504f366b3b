package greenops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "18,248", FormatNumber(18248))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in        float64
		precision int
		want      string
	}{
		{1234.567, 2, "1,234.57"},
		{9, 2, "9.00"},
		{65, 2, "65.00"},
		{0.4166, 1, "0.4"},
		{1234.5, 0, "1,235"},
		{2.5, 0, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in, tt.precision))
		})
	}
}

func TestFormatLarge(t *testing.T) {
	assert.Equal(t, "~1.5 billion", FormatLarge(1_500_000_000))
	assert.Equal(t, "~2.5 million", FormatLarge(2_500_000))
	assert.Equal(t, "1,000", FormatLarge(999.6))
}
