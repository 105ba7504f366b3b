package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rshade/ecopredict/internal/engine/cache"
	"github.com/rshade/ecopredict/internal/history"
	"github.com/rshade/ecopredict/internal/logging"
	"github.com/rshade/ecopredict/internal/score"
)

// DocumentedLatency is the response time of the hosted prediction API the
// CLI stands in for. Pass it to WithLatency to reproduce that behaviour.
const DocumentedLatency = 1500 * time.Millisecond

// Prediction is one answered request.
type Prediction struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Input     score.Input  `json:"input"`
	Result    score.Result `json:"result"`
	// Cached is true when Result came from the result cache.
	Cached bool `json:"cached"`
}

// ResultCache is the subset of cache.FileStore the predictor needs.
type ResultCache interface {
	Get(key string) (*cache.Entry, error)
	Set(key string, data json.RawMessage) error
}

// Recorder stores predictions; *history.Store satisfies it.
type Recorder interface {
	Save(ctx context.Context, rec history.Record) (history.Record, error)
}

// Predictor computes scores. It is safe for concurrent use.
type Predictor struct {
	latency  time.Duration
	cache    ResultCache
	recorder Recorder
	now      func() time.Time

	mu   sync.RWMutex
	last *Prediction
}

// NewPredictor returns a Predictor with no latency, cache or history.
func NewPredictor() *Predictor {
	return &Predictor{now: time.Now}
}

// WithLatency sets the artificial delay applied before each prediction.
func (p *Predictor) WithLatency(d time.Duration) *Predictor {
	p.latency = d
	return p
}

// WithCache enables the result cache. A disabled store is ignored.
func (p *Predictor) WithCache(c ResultCache) *Predictor {
	if fs, ok := c.(*cache.FileStore); ok && (fs == nil || !fs.IsEnabled()) {
		return p
	}
	p.cache = c
	return p
}

// WithRecorder enables history recording.
func (p *Predictor) WithRecorder(r Recorder) *Predictor {
	p.recorder = r
	return p
}

// WithClock overrides time.Now for tests.
func (p *Predictor) WithClock(now func() time.Time) *Predictor {
	p.now = now
	return p
}

// Latency returns the configured delay.
func (p *Predictor) Latency() time.Duration {
	return p.latency
}

// Predict validates in, waits for the configured latency and returns the
// score. Validation failures are returned as score.ValidationError values
// joined with errors.Join; nothing is computed or recorded for them.
//
// Cache and history failures are logged and never fail the prediction.
func (p *Predictor) Predict(ctx context.Context, in score.Input) (*Prediction, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "predict").
		Float64("usage_percent", in.UsagePercent).
		Float64("humidity_percent", in.HumidityPercent).
		Float64("solar_kwh", in.SolarKWh).
		Msg("starting prediction")

	if err := score.Validate(in); err != nil {
		log.Debug().Ctx(ctx).Str("component", "engine").Err(err).Msg("prediction input rejected")
		return nil, err
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	key, keyErr := cache.KeyFor(in)
	if keyErr != nil {
		log.Warn().Ctx(ctx).Str("component", "engine").Err(keyErr).Msg("cache key unavailable")
	}

	pred := &Prediction{Input: in, CreatedAt: p.now().UTC()}
	if res, ok := p.lookup(ctx, key); ok {
		pred.Result = res
		pred.Cached = true
	} else {
		pred.Result = score.Compute(in)
		p.store(ctx, key, pred.Result)
	}

	pred.ID = uuid.NewString()
	if p.recorder != nil {
		rec, err := p.recorder.Save(ctx, history.Record{
			ID:        pred.ID,
			CreatedAt: pred.CreatedAt,
			Input:     in,
			Result:    pred.Result,
		})
		if err != nil {
			log.Warn().Ctx(ctx).Str("component", "engine").Err(err).Msg("failed to record prediction")
		} else {
			pred.ID = rec.ID
		}
	}

	p.mu.Lock()
	p.last = pred
	p.mu.Unlock()

	log.Info().
		Ctx(ctx).
		Str("component", "engine").
		Str("prediction_id", pred.ID).
		Float64("predicted_score", pred.Result.PredictedScore).
		Bool("cached", pred.Cached).
		Dur("duration_ms", time.Since(start)).
		Msg("prediction complete")

	return pred, nil
}

// Last returns the most recent prediction made by this Predictor.
func (p *Predictor) Last() (*Prediction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.last != nil
}

// wait sleeps for the configured latency, returning early with the context
// error when ctx is cancelled.
func (p *Predictor) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Predictor) lookup(ctx context.Context, key string) (score.Result, bool) {
	if p.cache == nil || key == "" {
		return score.Result{}, false
	}
	entry, err := p.cache.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheExpired) {
			logging.FromContext(ctx).Warn().Ctx(ctx).Str("component", "engine").Err(err).Msg("cache read failed")
		}
		return score.Result{}, false
	}
	var res score.Result
	if err = entry.Decode(&res); err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Str("component", "engine").Err(err).Msg("cache entry unreadable")
		return score.Result{}, false
	}
	return res, true
}

func (p *Predictor) store(ctx context.Context, key string, res score.Result) {
	if p.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(res)
	if err == nil {
		err = p.cache.Set(key, data)
	}
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Str("component", "engine").Err(err).Msg("cache write failed")
	}
}
