package alarm

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Simulated usage shape: a 40-70% baseline with a 10% chance of a spike of
// up to 40 points, capped at 100.
const (
	simBaseMin      = 40.0
	simBaseSpread   = 30.0
	simSpikeChance  = 0.9
	simSpikeMaximum = 40.0
	simCeiling      = 100.0
)

// Float64er is the random source used by SimulatedSource; *rand.Rand
// satisfies it.
type Float64er interface {
	Float64() float64
}

// SimulatedSource generates plausible household usage for demos and tests.
type SimulatedSource struct {
	mu   sync.Mutex
	rand Float64er
}

// NewSimulatedSource returns a source seeded with seed. A zero seed uses the
// current time.
func NewSimulatedSource(seed int64) *SimulatedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // Simulated readings, not security sensitive.
	return &SimulatedSource{rand: rand.New(rand.NewSource(seed))}
}

// NewSimulatedSourceWithRand returns a source drawing from r.
func NewSimulatedSourceWithRand(r Float64er) *SimulatedSource {
	return &SimulatedSource{rand: r}
}

// Next returns the next simulated usage percentage.
func (s *SimulatedSource) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	usage := simBaseMin + s.rand.Float64()*simBaseSpread
	if s.rand.Float64() > simSpikeChance {
		usage += s.rand.Float64() * simSpikeMaximum
	}
	return min(simCeiling, usage), nil
}
