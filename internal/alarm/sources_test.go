package alarm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecopredict/internal/config"
)

type fixedRand struct {
	values []float64
	i      int
}

func (r *fixedRand) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

func TestSimulatedSource_Shape(t *testing.T) {
	tests := []struct {
		name  string
		draws []float64
		want  float64
	}{
		{"baseline low", []float64{0, 0.5}, 40},
		{"baseline high", []float64{1, 0.9}, 70},
		{"spike", []float64{0.5, 0.95, 0.5}, 75},
		{"capped", []float64{1, 0.99, 1}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSimulatedSourceWithRand(&fixedRand{values: tt.draws})
			got, err := src.Next(context.Background())
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSimulatedSource_Range(t *testing.T) {
	src := NewSimulatedSource(42)
	for range 1000 {
		v, err := src.Next(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 40.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestSimulatedSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimulatedSource(1).Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseUsagePayload(t *testing.T) {
	tests := []struct {
		payload string
		want    float64
		wantErr bool
	}{
		{"72.5", 72.5, false},
		{" 81 \n", 81, false},
		{`{"usage": 64.2}`, 64.2, false},
		{`{"usage_percent": 90}`, 90, false},
		{`{"usage": 10, "usage_percent": 90}`, 10, false},
		{"", 0, true},
		{"high", 0, true},
		{`{"watts": 1200}`, 0, true},
		{`{"usage": `, 0, true},
		{"-5", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := ParseUsagePayload([]byte(tt.payload))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMQTTSource_NextWaitsForReading(t *testing.T) {
	src := NewMQTTSource(config.MQTTConfig{Broker: "tcp://localhost:1883", Topic: "home/usage"})

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = src.ingest([]byte("88"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := src.Next(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 88.0, v, 1e-9)

	require.NoError(t, src.ingest([]byte(`{"usage": 42}`)))
	v, err = src.Next(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, v, 1e-9)

	require.Error(t, src.ingest([]byte("garbage")))
	v, err = src.Next(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, v, 1e-9, "bad payload keeps the previous reading")
}

func TestMQTTSource_NextCancelled(t *testing.T) {
	src := NewMQTTSource(config.MQTTConfig{Broker: "tcp://localhost:1883", Topic: "home/usage"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := src.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMQTTSource_ConnectRequiresBroker(t *testing.T) {
	err := NewMQTTSource(config.MQTTConfig{Topic: "t"}).Connect(context.Background())
	require.Error(t, err)

	err = NewMQTTSource(config.MQTTConfig{Broker: "tcp://localhost:1883"}).Connect(context.Background())
	require.Error(t, err)
}
