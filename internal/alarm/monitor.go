package alarm

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rshade/ecopredict/internal/logging"
)

// ReduceUsageHint accompanies every alarm.
const ReduceUsageHint = "Consider turning off non-essential appliances"

// Reading is the latest usage sample seen by a Monitor.
type Reading struct {
	Usage     float64   `json:"usage"`
	Timestamp time.Time `json:"timestamp"`
	Excessive bool      `json:"excessive"`
}

// Event is a raised alarm.
type Event struct {
	Usage     float64   `json:"usage"`
	Threshold float64   `json:"threshold"`
	Time      time.Time `json:"time"`
}

// Message is the alert headline.
func (Event) Message() string {
	return "High Energy Usage Alert!"
}

// Description gives the usage and threshold, e.g.
// "Current usage: 85.3% (Threshold: 80%)".
func (e Event) Description() string {
	return fmt.Sprintf("Current usage: %.1f%% (Threshold: %s%%)",
		e.Usage, strconv.FormatFloat(e.Threshold, 'f', -1, 64))
}

// Source yields usage percentages.
type Source interface {
	Next(ctx context.Context) (float64, error)
}

// Monitor tracks whether usage is excessive and decides when to alarm.
// It is safe for concurrent use.
type Monitor struct {
	mu        sync.Mutex
	settings  Settings
	active    bool
	lastAlarm time.Time
	last      Reading
}

// NewMonitor returns a Monitor with the given settings.
func NewMonitor(s Settings) *Monitor {
	return &Monitor{settings: s}
}

// Check records a usage sample taken at now. It returns an Event when usage
// exceeds the threshold, the alarm is enabled and not already active, and
// the cooldown since the previous alarm has elapsed. Usage back at or under
// the threshold clears the active alarm.
func (m *Monitor) Check(usage float64, now time.Time) *Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	excessive := usage > m.settings.Threshold
	m.last = Reading{Usage: usage, Timestamp: now, Excessive: excessive}

	switch {
	case excessive && m.settings.Enabled && !m.active:
		if !m.lastAlarm.IsZero() && now.Sub(m.lastAlarm) <= m.settings.Cooldown {
			return nil
		}
		m.active = true
		m.lastAlarm = now
		return &Event{Usage: usage, Threshold: m.settings.Threshold, Time: now}
	case !excessive && m.active:
		m.active = false
	}
	return nil
}

// Active reports whether an alarm is currently raised.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Last returns the most recent reading.
func (m *Monitor) Last() Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Settings returns the current settings.
func (m *Monitor) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateSettings replaces the settings. A running Run loop picks up a new
// interval on its next tick.
func (m *Monitor) UpdateSettings(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
}

// Reset clears the active alarm and the cooldown.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	m.lastAlarm = time.Time{}
}

// Run polls src every interval and calls onAlarm for each Event until ctx is
// cancelled. Polling is skipped while the alarm is disabled. Source errors
// are logged and polling continues.
func (m *Monitor) Run(ctx context.Context, src Source, onAlarm func(Event)) error {
	log := logging.FromContext(ctx)

	interval := m.Settings().Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Ctx(ctx).
		Str("component", "alarm").
		Float64("threshold", m.Settings().Threshold).
		Dur("interval", interval).
		Msg("energy usage monitor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Ctx(ctx).Str("component", "alarm").Msg("energy usage monitor stopped")
			return nil
		case <-ticker.C:
		}

		s := m.Settings()
		if s.Interval > 0 && s.Interval != interval {
			interval = s.Interval
			ticker.Reset(interval)
		}
		if !s.Enabled {
			continue
		}

		usage, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Ctx(ctx).Str("component", "alarm").Err(err).Msg("usage source failed")
			continue
		}

		log.Debug().Ctx(ctx).Str("component", "alarm").Float64("usage", usage).Msg("usage sample")
		if ev := m.Check(usage, time.Now()); ev != nil {
			log.Warn().Ctx(ctx).
				Str("component", "alarm").
				Float64("usage", ev.Usage).
				Float64("threshold", ev.Threshold).
				Msg("high energy usage")
			if onAlarm != nil {
				onAlarm(*ev)
			}
		}
	}
}
