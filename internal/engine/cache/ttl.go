package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL configuration constants and defaults.
const (
	// DefaultTTLSeconds is the default cache TTL (1 hour).
	DefaultTTLSeconds = 3600

	// MinTTLSeconds is the minimum allowed TTL (1 minute).
	MinTTLSeconds = 60

	// MaxTTLSeconds is the maximum allowed TTL (7 days).
	MaxTTLSeconds = 604800

	// DefaultCacheMaxSizeMB is the default maximum cache size in MB.
	DefaultCacheMaxSizeMB = 100

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24

	// EnvTTLSeconds is the environment variable for overriding TTL.
	EnvTTLSeconds = "ECOPREDICT_CACHE_TTL_SECONDS"

	// EnvCacheEnabled is the environment variable for enabling/disabling cache.
	EnvCacheEnabled = "ECOPREDICT_CACHE_ENABLED"

	// EnvCacheDir is the environment variable for cache directory.
	EnvCacheDir = "ECOPREDICT_CACHE_DIR"

	// EnvCacheMaxSize is the environment variable for max cache size in MB.
	EnvCacheMaxSize = "ECOPREDICT_CACHE_MAX_SIZE_MB"
)

// TTL validation errors.
var (
	ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)
)

// TTLFromEnv returns the TTL from ECOPREDICT_CACHE_TTL_SECONDS, or fallback
// when the variable is unset or out of range. Duration strings such as "30m"
// are accepted.
func TTLFromEnv(fallback int) int {
	envVal := os.Getenv(EnvTTLSeconds)
	if envVal == "" {
		return fallback
	}

	ttl, err := ParseTTL(envVal)
	if err != nil {
		return fallback
	}
	return ttl
}

// EnabledFromEnv returns ECOPREDICT_CACHE_ENABLED, or fallback when unset
// or unparsable.
func EnabledFromEnv(fallback bool) bool {
	envVal := os.Getenv(EnvCacheEnabled)
	if envVal == "" {
		return fallback
	}

	enabled, err := strconv.ParseBool(envVal)
	if err != nil {
		return fallback
	}
	return enabled
}

// DirFromEnv returns ECOPREDICT_CACHE_DIR, or fallback when unset.
func DirFromEnv(fallback string) string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return fallback
}

// MaxSizeFromEnv returns ECOPREDICT_CACHE_MAX_SIZE_MB, or fallback when
// unset, unparsable or negative.
func MaxSizeFromEnv(fallback int) int {
	envVal := os.Getenv(EnvCacheMaxSize)
	if envVal == "" {
		return fallback
	}

	maxSize, err := strconv.Atoi(envVal)
	if err != nil || maxSize < 0 {
		return fallback
	}
	return maxSize
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "1h", "30m", "5m30s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// ParseTTL parses a TTL string in various formats:
// - Integer seconds: "3600".
// - Duration string: "1h", "30m", "1h30m".
func ParseTTL(s string) (int, error) {
	// Try parsing as integer seconds first
	if seconds, err := strconv.Atoi(s); err == nil {
		if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
			return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
		}
		return seconds, nil
	}

	// Try parsing as duration
	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}

	seconds := int(duration.Seconds())
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}

	return seconds, nil
}
