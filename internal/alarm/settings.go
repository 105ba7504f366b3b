// Package alarm watches household energy usage and raises an alert when it
// climbs past a threshold, with a cooldown so a sustained spike alerts once.
package alarm

import (
	"errors"
	"fmt"
	"time"

	"github.com/rshade/ecopredict/internal/config"
)

// Defaults.
const (
	DefaultThreshold = 80.0
	DefaultInterval  = 5 * time.Second
	DefaultCooldown  = 30 * time.Second
)

// Settings control a Monitor.
type Settings struct {
	Enabled bool
	// Threshold is the usage percentage above which usage is excessive.
	Threshold float64
	// Interval is how often Run polls its Source.
	Interval time.Duration
	// Cooldown is the minimum time between two alarms.
	Cooldown time.Duration
}

// DefaultSettings returns an enabled alarm at 80% with a 5s poll and 30s cooldown.
func DefaultSettings() Settings {
	return Settings{
		Enabled:   true,
		Threshold: DefaultThreshold,
		Interval:  DefaultInterval,
		Cooldown:  DefaultCooldown,
	}
}

// SettingsFromConfig converts the alarm config section.
func SettingsFromConfig(c config.AlarmConfig) Settings {
	return Settings{
		Enabled:   c.Enabled,
		Threshold: c.Threshold,
		Interval:  time.Duration(c.IntervalSeconds) * time.Second,
		Cooldown:  time.Duration(c.CooldownSeconds) * time.Second,
	}
}

// Validate reports settings a Monitor cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if s.Threshold < 0 || s.Threshold > 100 {
		errs = append(errs, fmt.Errorf("threshold must be between 0 and 100, got %v", s.Threshold))
	}
	if s.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", s.Interval))
	}
	if s.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must not be negative, got %s", s.Cooldown))
	}
	return errors.Join(errs...)
}
