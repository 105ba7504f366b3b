package alarm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecopredict/internal/config"
)

var t0 = time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)

func TestCheck(t *testing.T) {
	m := NewMonitor(DefaultSettings())

	assert.Nil(t, m.Check(75, t0), "under threshold")
	assert.False(t, m.Last().Excessive)

	assert.Nil(t, m.Check(80, t0), "equal to threshold is not excessive")

	ev := m.Check(85.34, t0.Add(time.Second))
	require.NotNil(t, ev)
	assert.InDelta(t, 85.34, ev.Usage, 1e-9)
	assert.InDelta(t, 80.0, ev.Threshold, 1e-9)
	assert.True(t, m.Active())
	assert.Equal(t, "Current usage: 85.3% (Threshold: 80%)", ev.Description())
	assert.Equal(t, "High Energy Usage Alert!", ev.Message())

	assert.Nil(t, m.Check(95, t0.Add(2*time.Second)), "already active")

	assert.Nil(t, m.Check(50, t0.Add(3*time.Second)))
	assert.False(t, m.Active(), "normal usage clears the alarm")

	assert.Nil(t, m.Check(90, t0.Add(10*time.Second)), "inside cooldown")
	assert.False(t, m.Active())

	assert.Nil(t, m.Check(90, t0.Add(31*time.Second)), "cooldown boundary is exclusive")
	ev = m.Check(90, t0.Add(31*time.Second+time.Millisecond))
	require.NotNil(t, ev)
}

func TestCheck_Disabled(t *testing.T) {
	s := DefaultSettings()
	s.Enabled = false
	m := NewMonitor(s)

	assert.Nil(t, m.Check(99, t0))
	assert.True(t, m.Last().Excessive)
	assert.False(t, m.Active())
}

func TestReset(t *testing.T) {
	m := NewMonitor(DefaultSettings())
	require.NotNil(t, m.Check(90, t0))

	m.Reset()
	assert.False(t, m.Active())
	assert.NotNil(t, m.Check(90, t0.Add(time.Second)), "reset clears the cooldown")
}

func TestUpdateSettings(t *testing.T) {
	m := NewMonitor(DefaultSettings())

	s := m.Settings()
	s.Threshold = 60
	m.UpdateSettings(s)

	assert.NotNil(t, m.Check(65, t0))
	assert.InDelta(t, 60.0, m.Settings().Threshold, 1e-9)
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.Defaults().Alarm)
	assert.Equal(t, DefaultSettings(), s)
	require.NoError(t, s.Validate())

	bad := Settings{Threshold: 120, Interval: 0, Cooldown: -time.Second}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
	assert.Contains(t, err.Error(), "interval")
	assert.Contains(t, err.Error(), "cooldown")
}

type scriptedSource struct {
	mu     sync.Mutex
	values []float64
	errs   int
}

func (s *scriptedSource) Next(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errs > 0 {
		s.errs--
		return 0, errors.New("meter offline")
	}
	if len(s.values) == 0 {
		return 10, nil
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

func TestRun_RaisesAlarm(t *testing.T) {
	s := DefaultSettings()
	s.Interval = 5 * time.Millisecond
	m := NewMonitor(s)

	src := &scriptedSource{values: []float64{50, 95}, errs: 1}
	events := make(chan Event, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, src, func(e Event) { events <- e }) }()

	select {
	case ev := <-events:
		assert.InDelta(t, 95.0, ev.Usage, 1e-9)
	case <-time.After(5 * time.Second):
		t.Fatal("no alarm raised")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRun_DisabledDoesNotPoll(t *testing.T) {
	s := DefaultSettings()
	s.Enabled = false
	s.Interval = 2 * time.Millisecond
	m := NewMonitor(s)

	src := &scriptedSource{values: []float64{99}}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	require.NoError(t, m.Run(ctx, src, func(Event) { t.Error("unexpected alarm") }))
	assert.Len(t, src.values, 1, "source must not be read while disabled")
}
