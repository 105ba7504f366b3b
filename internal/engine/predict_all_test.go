package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/engine/batch"
	"github.com/rshade/ecopredict/internal/score"
)

func TestPredictAll_PreservesOrder(t *testing.T) {
	rec := &fakeRecorder{}
	p := engine.NewPredictor().WithRecorder(rec)

	inputs := make([]score.Input, 30)
	for i := range inputs {
		inputs[i] = score.DefaultInput()
		inputs[i].UsagePercent = float64(i)
	}

	outcomes, err := p.PredictAll(context.Background(), inputs, engine.BatchOptions{ChunkSize: 4, Concurrency: 3})
	require.NoError(t, err)
	require.Len(t, outcomes, len(inputs))

	for i, out := range outcomes {
		require.NoError(t, out.Err)
		assert.Equal(t, i, out.Index)
		assert.Equal(t, inputs[i], out.Prediction.Input)
		assert.Equal(t, score.Compute(inputs[i]), out.Prediction.Result)
	}
	assert.Len(t, rec.recs, len(inputs))
}

func TestPredictAll_InvalidInputFailsOnlyItsOutcome(t *testing.T) {
	p := engine.NewPredictor()

	bad := score.DefaultInput()
	bad.SolarKWh = 25
	inputs := []score.Input{score.DefaultInput(), bad, score.DefaultInput()}

	outcomes, err := p.PredictAll(context.Background(), inputs, engine.BatchOptions{})
	require.NoError(t, err)

	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, score.ErrOutOfRange)
	assert.Nil(t, outcomes[1].Prediction)
	assert.NoError(t, outcomes[2].Err)
	assert.InDelta(t, 82.0, outcomes[2].Prediction.Result.PredictedScore, 1e-9)
}

func TestPredictAll_Cancelled(t *testing.T) {
	p := engine.NewPredictor().WithLatency(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.PredictAll(ctx, []score.Input{score.DefaultInput(), score.DefaultInput()}, engine.BatchOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPredictAll_InvalidOptions(t *testing.T) {
	_, err := engine.NewPredictor().PredictAll(context.Background(),
		[]score.Input{score.DefaultInput()}, engine.BatchOptions{ChunkSize: batch.MaxChunkSize + 1})
	assert.ErrorIs(t, err, batch.ErrInvalidChunkSize)
}

func TestPredictAll_Empty(t *testing.T) {
	outcomes, err := engine.NewPredictor().PredictAll(context.Background(), nil, engine.BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}
