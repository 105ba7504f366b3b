package engine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/engine/cache"
	"github.com/rshade/ecopredict/internal/score"
)

// BenchmarkPredict_CacheHit benchmarks a repeat prediction answered from the file cache.
func BenchmarkPredict_CacheHit(b *testing.B) {
	b.ReportAllocs()
	store, err := cache.NewFileStore(filepath.Join(b.TempDir(), "cache"), true, 3600, 10)
	if err != nil {
		b.Fatal(err)
	}
	p := engine.NewPredictor().WithCache(store)
	ctx := context.Background()
	in := score.DefaultInput()
	if _, err = p.Predict(ctx, in); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Predict(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPredictAll benchmarks scoring 1,000 households with the default batch options.
func BenchmarkPredictAll(b *testing.B) {
	b.ReportAllocs()
	inputs := make([]score.Input, 1000)
	for i := range inputs {
		inputs[i] = score.DefaultInput()
		inputs[i].UsagePercent = float64(i % 101)
	}
	p := engine.NewPredictor()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.PredictAll(ctx, inputs, engine.BatchOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
