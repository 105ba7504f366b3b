package engine

import (
	"context"
	"errors"

	"github.com/rshade/ecopredict/internal/engine/batch"
	"github.com/rshade/ecopredict/internal/logging"
	"github.com/rshade/ecopredict/internal/score"
)

// Outcome is the result for one input of PredictAll. Exactly one of
// Prediction and Err is set.
type Outcome struct {
	Index      int
	Prediction *Prediction
	Err        error
}

// BatchOptions tunes PredictAll. Zero values select the batch defaults.
type BatchOptions struct {
	ChunkSize   int
	Concurrency int
}

// PredictAll scores every input and returns one Outcome per input, in input
// order. A rejected input only fails its own Outcome. Cancelling ctx stops
// the run and returns the context error with the outcomes gathered so far.
func (p *Predictor) PredictAll(ctx context.Context, inputs []score.Input, opts BatchOptions) ([]Outcome, error) {
	log := logging.FromContext(ctx)

	if opts.ChunkSize == 0 {
		opts.ChunkSize = batch.DefaultChunkSize
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = batch.DefaultConcurrency
	}
	proc, err := batch.New[score.Input](opts.ChunkSize, opts.Concurrency)
	if err != nil {
		return nil, err
	}
	proc.WithProgress(func(pr batch.Progress) {
		log.Debug().
			Ctx(ctx).
			Str("component", "engine").
			Str("operation", "predict_all").
			Int("done", pr.Done).
			Int("total", pr.Total).
			Dur("elapsed", pr.Elapsed).
			Msg("batch progress")
	})

	outcomes := make([]Outcome, len(inputs))
	for i := range outcomes {
		outcomes[i].Index = i
	}

	// Each chunk writes a disjoint range of outcomes.
	err = proc.Run(ctx, inputs, func(ctx context.Context, chunk []score.Input, offset int) error {
		for i, in := range chunk {
			pred, predErr := p.Predict(ctx, in)
			if predErr != nil && (errors.Is(predErr, context.Canceled) || errors.Is(predErr, context.DeadlineExceeded)) {
				return predErr
			}
			outcomes[offset+i].Prediction = pred
			outcomes[offset+i].Err = predErr
		}
		return nil
	})
	return outcomes, err
}
