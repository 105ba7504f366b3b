package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownKey is returned by Get and Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown config key")

// field binds a dotted config key to accessors on Config.
type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

//nolint:gochecknoglobals // Static key table.
var fields = map[string]field{
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: func(c *Config, v string) error { c.Output.DefaultFormat = strings.ToLower(v); return nil },
	},
	"output.precision": {
		get: func(c *Config) string { return strconv.Itoa(c.Output.Precision) },
		set: func(c *Config, v string) error { return setInt(&c.Output.Precision, v) },
	},
	"output.report_dir": {
		get: func(c *Config) string { return c.Output.ReportDir },
		set: func(c *Config, v string) error { c.Output.ReportDir = v; return nil },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = v; return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error { c.Logging.Format = v; return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
	"prediction.latency_ms": {
		get: func(c *Config) string { return strconv.Itoa(c.Prediction.LatencyMS) },
		set: func(c *Config, v string) error { return setInt(&c.Prediction.LatencyMS, v) },
	},
	"cache.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Enabled) },
		set: func(c *Config, v string) error { return setBool(&c.Cache.Enabled, v) },
	},
	"cache.ttl_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Cache.TTLSeconds) },
		set: func(c *Config, v string) error { return setInt(&c.Cache.TTLSeconds, v) },
	},
	"cache.directory": {
		get: func(c *Config) string { return c.Cache.Directory },
		set: func(c *Config, v string) error { c.Cache.Directory = v; return nil },
	},
	"cache.max_size_mb": {
		get: func(c *Config) string { return strconv.Itoa(c.Cache.MaxSizeMB) },
		set: func(c *Config, v string) error { return setInt(&c.Cache.MaxSizeMB, v) },
	},
	"history.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.History.Enabled) },
		set: func(c *Config, v string) error { return setBool(&c.History.Enabled, v) },
	},
	"history.path": {
		get: func(c *Config) string { return c.History.Path },
		set: func(c *Config, v string) error { c.History.Path = v; return nil },
	},
	"alarm.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Alarm.Enabled) },
		set: func(c *Config, v string) error { return setBool(&c.Alarm.Enabled, v) },
	},
	"alarm.threshold": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Alarm.Threshold, 'f', -1, 64) },
		set: func(c *Config, v string) error { return setFloat(&c.Alarm.Threshold, v) },
	},
	"alarm.interval_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Alarm.IntervalSeconds) },
		set: func(c *Config, v string) error { return setInt(&c.Alarm.IntervalSeconds, v) },
	},
	"alarm.cooldown_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Alarm.CooldownSeconds) },
		set: func(c *Config, v string) error { return setInt(&c.Alarm.CooldownSeconds, v) },
	},
	"alarm.source": {
		get: func(c *Config) string { return c.Alarm.Source },
		set: func(c *Config, v string) error { c.Alarm.Source = strings.ToLower(v); return nil },
	},
	"alarm.mqtt.broker": {
		get: func(c *Config) string { return c.Alarm.MQTT.Broker },
		set: func(c *Config, v string) error { c.Alarm.MQTT.Broker = v; return nil },
	},
	"alarm.mqtt.topic": {
		get: func(c *Config) string { return c.Alarm.MQTT.Topic },
		set: func(c *Config, v string) error { c.Alarm.MQTT.Topic = v; return nil },
	},
	"server.address": {
		get: func(c *Config) string { return c.Server.Address },
		set: func(c *Config, v string) error { c.Server.Address = v; return nil },
	},
	"server.watch_config": {
		get: func(c *Config) string { return strconv.FormatBool(c.Server.WatchConfig) },
		set: func(c *Config, v string) error { return setBool(&c.Server.WatchConfig, v) },
	},
}

// Get returns the value at a dotted key such as "output.default_format".
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set parses and stores the value at a dotted key.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns every key with its current value.
func (c *Config) List() map[string]string {
	out := make(map[string]string, len(fields))
	for k, f := range fields {
		out[k] = f.get(c)
	}
	return out
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", v)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", v)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("expected true or false, got %q", v)
	}
	*dst = b
	return nil
}
